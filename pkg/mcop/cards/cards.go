// Package cards loads and serves the registry capability cards of the
// execution units.
package cards

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/aiverse/datafabric/pkg/utils/filewatch"
)

// Metadata identifies a card.
type Metadata struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Domain  string `json:"domain"`
}

// Capability describes what the unit does.
type Capability struct {
	Type        string   `json:"type"`
	Tags        []string `json:"tags,omitempty"`
	Description string   `json:"description"`
}

// Card is one registry capability card, read from a JSON document.
type Card struct {
	Metadata        Metadata   `json:"metadata"`
	Capability      Capability `json:"capability"`
	InputContract   []string   `json:"input_contract"`
	OutputContract  []string   `json:"output_contract"`
	ConsumerIntents []string   `json:"consumer_intents,omitempty"`
	FailureModes    []string   `json:"failure_modes,omitempty"`
	Profile         Profile    `json:"execution_profile"`
}

// Profile is the static execution profile of a unit, used for
// placement hints.
type Profile struct {
	ComputeClass string `json:"compute_class"`
	MemoryClass  string `json:"memory_class"`
	IOPattern    string `json:"io_pattern"`
}

// Load reads every *.json card in dir. Cards without a metadata name
// or domain are rejected; the whole load fails rather than serving a
// partial catalogue.
func Load(dir string) ([]Card, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	cards := make([]Card, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("registry card %s: %w", path, err)
		}
		var card Card
		if err := json.Unmarshal(raw, &card); err != nil {
			return nil, fmt.Errorf("registry card %s: %w", path, err)
		}
		if card.Metadata.Name == "" || card.Metadata.Domain == "" {
			return nil, fmt.Errorf("registry card %s: metadata.name and metadata.domain are required", path)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// Provider serves the card catalogue and refreshes it when the card
// directory changes.
type Provider struct {
	dir string

	mu    sync.RWMutex
	cards []Card
}

// NewProvider loads dir once and returns a provider over it.
func NewProvider(dir string) (*Provider, error) {
	loaded, err := Load(dir)
	if err != nil {
		return nil, err
	}
	return &Provider{dir: dir, cards: loaded}, nil
}

// Cards returns the current catalogue, optionally filtered by domain.
// Pass "" to get everything.
func (p *Provider) Cards(domain string) []Card {
	p.mu.RLock()
	defer p.mu.RUnlock()

	cards := make([]Card, 0, len(p.cards))
	for _, card := range p.cards {
		if domain != "" && card.Metadata.Domain != domain {
			continue
		}
		cards = append(cards, card)
	}
	return cards
}

// Find returns the card of a unit by metadata name.
func (p *Provider) Find(name string) (Card, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, card := range p.cards {
		if card.Metadata.Name == name {
			return card, true
		}
	}
	return Card{}, false
}

// Reload re-reads the card directory. A directory that no longer loads
// keeps the previous catalogue and returns the error.
func (p *Provider) Reload() error {
	loaded, err := Load(p.dir)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.cards = loaded
	p.mu.Unlock()
	return nil
}

// Watch reloads the catalogue whenever the card directory changes,
// until ctx is done. Reload errors go to onError (may be nil).
func (p *Provider) Watch(ctx context.Context, onError func(error)) error {
	for {
		wctx, release, err := filewatch.UntilModifyContext(ctx, p.dir)
		if err != nil {
			return err
		}
		<-wctx.Done()
		release()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := p.Reload(); err != nil && onError != nil {
			onError(err)
		}
	}
}
