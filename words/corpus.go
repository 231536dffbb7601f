package words

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"sync"
)

var (
	ErrEmptyCorpus = errors.New("word corpus is empty")
	ErrNoSynonyms  = errors.New("corpus entry has no similar words")
)

// Entry is one drawable word together with its near-synonyms, used for the
// similar-word game mode.
type Entry struct {
	Word    string   `json:"word"`
	Similar []string `json:"similar"`
}

// Category groups entries by theme. Draws weight categories equally, not by
// entry count.
type Category struct {
	Name    string  `json:"name"`
	Entries []Entry `json:"entries"`
}

// Corpus is the read-only word dataset. Draws are safe for concurrent use.
type Corpus struct {
	mu         sync.Mutex
	rng        *rand.Rand
	categories []Category
}

// New validates the dataset and wraps it with the given random source.
// An empty dataset is a configuration error, not something callers are
// expected to recover from.
func New(categories []Category, rng *rand.Rand) (*Corpus, error) {
	if len(categories) == 0 {
		return nil, ErrEmptyCorpus
	}
	for _, c := range categories {
		if len(c.Entries) == 0 {
			return nil, fmt.Errorf("%w: category %q has no entries", ErrEmptyCorpus, c.Name)
		}
		for _, e := range c.Entries {
			if len(e.Similar) == 0 {
				return nil, fmt.Errorf("%w: entry %q in category %q", ErrNoSynonyms, e.Word, c.Name)
			}
		}
	}
	return &Corpus{rng: rng, categories: categories}, nil
}

// LoadFile reads a JSON corpus file: an array of categories, each holding
// entries of {word, similar: [...]}.
func LoadFile(path string, rng *rand.Rand) (*Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus %s: %w", path, err)
	}
	var categories []Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}
	return New(categories, rng)
}

// RandomTerm draws a category uniformly at random, then an entry within it.
// Categories with few entries are as likely to surface as large ones.
func (c *Corpus) RandomTerm() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.randomEntry()
	return e.Word
}

// RandomPair draws an entry the same way and returns its word alongside one
// of its near-synonyms.
func (c *Corpus) RandomPair() (primary, similar string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.randomEntry()
	return e.Word, e.Similar[c.rng.Intn(len(e.Similar))]
}

// Size reports the total entry count, for startup logging.
func (c *Corpus) Size() int {
	n := 0
	for _, cat := range c.categories {
		n += len(cat.Entries)
	}
	return n
}

func (c *Corpus) randomEntry() Entry {
	cat := c.categories[c.rng.Intn(len(c.categories))]
	return cat.Entries[c.rng.Intn(len(cat.Entries))]
}
