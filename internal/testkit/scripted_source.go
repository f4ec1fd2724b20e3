package testkit

import (
	"context"
	"net/url"
	"sync"

	"labscope/domain/catalog"
)

// ScriptedCall is one in-progress FetchCollection call against a
// ScriptedSource. The caller blocks until Respond releases it, which lets
// tests order responses across concurrent fetches.
type ScriptedCall struct {
	Resource catalog.Resource
	Params   url.Values
	Ctx      context.Context

	release chan struct{}
	coll    catalog.Collection
	err     error
}

// Respond completes the call with the given result
func (c *ScriptedCall) Respond(coll catalog.Collection, err error) {
	c.coll = coll
	c.err = err
	close(c.release)
}

// ScriptedSource is a catalog source whose fetches block until the test
// releases them. It deliberately ignores context cancellation while
// waiting: discarding a late response is the controller's job, and the
// race tests rely on the transport NOT stopping.
type ScriptedSource struct {
	mu      sync.Mutex
	started chan *ScriptedCall
	vocab   map[catalog.Dimension][]string
	History []*ScriptedCall
}

// NewScriptedSource creates a scripted source with room for pending calls
func NewScriptedSource() *ScriptedSource {
	return &ScriptedSource{
		started: make(chan *ScriptedCall, 16),
		vocab:   make(map[catalog.Dimension][]string),
	}
}

// Started delivers each fetch call as it begins
func (s *ScriptedSource) Started() <-chan *ScriptedCall {
	return s.started
}

// SetVocabulary scripts the vocabulary for one dimension
func (s *ScriptedSource) SetVocabulary(dim catalog.Dimension, values []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vocab[dim] = values
}

// FetchCollection blocks until the test responds to the call
func (s *ScriptedSource) FetchCollection(ctx context.Context, resource catalog.Resource, params url.Values) (catalog.Collection, error) {
	call := &ScriptedCall{
		Resource: resource,
		Params:   params,
		Ctx:      ctx,
		release:  make(chan struct{}),
	}
	s.mu.Lock()
	s.History = append(s.History, call)
	s.mu.Unlock()
	s.started <- call

	<-call.release
	return call.coll, call.err
}

// FetchVocabulary returns the scripted vocabulary immediately
func (s *ScriptedSource) FetchVocabulary(ctx context.Context, dim catalog.Dimension) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vocab[dim], nil
}

// CallCount returns how many collection fetches have started
func (s *ScriptedSource) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.History)
}
