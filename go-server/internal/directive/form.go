// Copyright (c) 2024-2026 IT Help San Diego Inc.
// Licensed under BUSL-1.1 — See LICENSE for terms.
package directive

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kbeqi/llms-generator/go-server/internal/catalog"
)

var ErrUnknownAgent = errors.New("unknown agent")

// State is a snapshot of the form inputs.
type State struct {
	SiteURL string         `json:"site_url"`
	Contact string         `json:"contact"`
	Policy  catalog.Policy `json:"policy"`
}

// DefaultState is the state a fresh form starts in.
func DefaultState() State {
	return State{Policy: catalog.DefaultPolicy()}
}

// Text renders the document for s.
func (s State) Text() string {
	return Generate(s.SiteURL, s.Contact, s.Policy)
}

// Form owns the mutable inputs and the derived document. Every mutation
// recomputes the text before returning and then notifies subscribers.
type Form struct {
	mu          sync.Mutex
	state       State
	text        string
	copied      bool
	subscribers []func(string)
}

func NewForm() *Form {
	return NewFormFromState(DefaultState())
}

// NewFormFromState starts a form from s. Policy entries for unknown agents
// are dropped and missing agents get their catalog default.
func NewFormFromState(s State) *Form {
	policy := catalog.DefaultPolicy()
	for name, allow := range s.Policy {
		if _, ok := catalog.Lookup(name); ok {
			policy[name] = allow
		}
	}
	f := &Form{state: State{SiteURL: s.SiteURL, Contact: s.Contact, Policy: policy}}
	f.text = f.state.Text()
	return f
}

// Subscribe registers fn to receive the new text after every mutation.
func (f *Form) Subscribe(fn func(text string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribers = append(f.subscribers, fn)
}

func (f *Form) SetSiteURL(v string) {
	f.mutate(func(s *State) error {
		s.SiteURL = v
		return nil
	})
}

func (f *Form) SetContact(v string) {
	f.mutate(func(s *State) error {
		s.Contact = v
		return nil
	})
}

// Toggle flips the policy of a single agent.
func (f *Form) Toggle(name string) error {
	return f.mutate(func(s *State) error {
		if _, ok := catalog.Lookup(name); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAgent, name)
		}
		s.Policy[name] = !s.Policy[name]
		return nil
	})
}

func (f *Form) SetAllow(name string, allow bool) error {
	return f.mutate(func(s *State) error {
		if _, ok := catalog.Lookup(name); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownAgent, name)
		}
		s.Policy[name] = allow
		return nil
	})
}

// Reset restores the catalog defaults and clears both text fields.
func (f *Form) Reset() {
	f.mutate(func(s *State) error {
		*s = DefaultState()
		return nil
	})
}

func (f *Form) mutate(apply func(*State) error) error {
	f.mu.Lock()
	if err := apply(&f.state); err != nil {
		f.mu.Unlock()
		return err
	}
	f.text = f.state.Text()
	f.copied = false
	text := f.text
	subs := append([]func(string){}, f.subscribers...)
	f.mu.Unlock()

	for _, fn := range subs {
		fn(text)
	}
	return nil
}

func (f *Form) Text() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.text
}

// State returns a snapshot; the policy is copied.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return State{SiteURL: f.state.SiteURL, Contact: f.state.Contact, Policy: f.state.Policy.Clone()}
}

func (f *Form) Allowed(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Policy.Allowed(name)
}

func (f *Form) Copied() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.copied
}

// Copy writes the current text through write. A failure is logged and
// clears the copied indicator; it is not retried.
func (f *Form) Copy(write func(string) error) bool {
	text := f.Text()
	err := write(text)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.copied = false
		slog.Error("Copy to clipboard failed", "error", err)
		return false
	}
	f.copied = f.text == text
	return f.copied
}

// CopyLabel is the copy button caption for the given indicator value.
func CopyLabel(copied bool) string {
	if copied {
		return "Copied!"
	}
	return "Copy"
}
