// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.

// Package catalog holds the fixed, ordered list of AI crawler user agents
// the generator knows about, together with their default access policy.
package catalog

// Agent is a named crawler and the policy it starts with.
type Agent struct {
	Name         string `json:"name"`
	DefaultAllow bool   `json:"default_allow"`
}

// Policy maps an agent name to whether it is allowed.
type Policy map[string]bool

// knownAICrawlers is iterated in declaration order everywhere; do not sort.
var knownAICrawlers = []Agent{
	{Name: "OpenAI", DefaultAllow: true},
	{Name: "Perplexity", DefaultAllow: true},
	{Name: "ClaudeBot", DefaultAllow: false},
	{Name: "Google-Extended", DefaultAllow: false},
	{Name: "CCBot", DefaultAllow: false},
}

// Agents returns a copy of the catalog in catalog order.
func Agents() []Agent {
	out := make([]Agent, len(knownAICrawlers))
	copy(out, knownAICrawlers)
	return out
}

func Names() []string {
	names := make([]string, 0, len(knownAICrawlers))
	for _, a := range knownAICrawlers {
		names = append(names, a.Name)
	}
	return names
}

// Lookup finds an agent by its exact name.
func Lookup(name string) (Agent, bool) {
	for _, a := range knownAICrawlers {
		if a.Name == name {
			return a, true
		}
	}
	return Agent{}, false
}

// DefaultPolicy returns a fresh policy initialized from the catalog defaults.
func DefaultPolicy() Policy {
	p := make(Policy, len(knownAICrawlers))
	for _, a := range knownAICrawlers {
		p[a.Name] = a.DefaultAllow
	}
	return p
}

// Allowed reports the policy for name, falling back to the catalog default
// when the policy has no entry for it.
func (p Policy) Allowed(name string) bool {
	if allow, ok := p[name]; ok {
		return allow
	}
	a, _ := Lookup(name)
	return a.DefaultAllow
}

// Clone returns an independent copy of p.
func (p Policy) Clone() Policy {
	out := make(Policy, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

func ActionLabel(allow bool) string {
	if allow {
		return "Allow"
	}
	return "Disallow"
}
