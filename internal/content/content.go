// Package content manages the named motion curves of a curver installation.
//
// Curves are stored through a [Store], either as JSON files in a directory or
// in an embedded Badger database. [Content] adds naming rules on top: free
// names for new and duplicated motions, conflict checks on rename, and
// change notifications for subscribers such as the HTTP API.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"github.com/being-motion/spline"
)

var (
	ErrNotFound    = errors.New("motion not found")
	ErrExists      = errors.New("motion already exists")
	ErrNoFreeName  = errors.New("no free name")
	ErrInvalidName = errors.New("invalid motion name")
)

// DefaultName is the base name of newly created motions.
const DefaultName = "Untitled"

// maxSuffix bounds the numbers tried by FindFreeName.
const maxSuffix = 100

type EventKind int

const (
	Saved EventKind = iota
	Deleted
	Renamed
	// Changed reports a modification from outside the process, such as a
	// file edited in the content directory.
	Changed
)

func (k EventKind) String() string {
	switch k {
	case Saved:
		return "saved"
	case Deleted:
		return "deleted"
	case Renamed:
		return "renamed"
	case Changed:
		return "changed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event describes one change to the content.
type Event struct {
	Kind EventKind
	// Name is the affected motion. It is empty for Changed.
	Name string
	// From is the previous name of a renamed motion.
	From string
}

// Motion is a named curve.
type Motion struct {
	Name  string
	Curve *spline.BPoly
}

type renamer interface {
	Rename(from, to string) error
}

// Content is safe for concurrent use.
type Content struct {
	store  Store
	logger *slog.Logger

	// mu serializes operations that read and then write the store.
	mu sync.Mutex

	subsMu sync.Mutex
	subs   map[chan Event]struct{}
}

type Option func(*Content)

func WithLogger(l *slog.Logger) Option {
	return func(c *Content) { c.logger = l }
}

func New(store Store, opts ...Option) *Content {
	c := &Content{
		store:  store,
		logger: slog.New(slog.DiscardHandler),
		subs:   make(map[chan Event]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close closes the underlying store.
func (c *Content) Close() error {
	return c.store.Close()
}

// ValidName reports whether name can be used for a motion. Names become file
// names, so path separators, leading dots and control characters are
// rejected.
func ValidName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case len(name) > 200:
		return fmt.Errorf("%w: too long", ErrInvalidName)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidName, name)
	case strings.ContainsFunc(name, unicode.IsControl):
		return fmt.Errorf("%w: %q contains control characters", ErrInvalidName, name)
	}
	return nil
}

func (c *Content) Exists(name string) bool {
	if ValidName(name) != nil {
		return false
	}
	_, err := c.store.Get(name)
	return err == nil
}

func (c *Content) Load(name string) (*spline.BPoly, error) {
	if err := ValidName(name); err != nil {
		return nil, err
	}
	data, err := c.store.Get(name)
	if err != nil {
		return nil, err
	}
	var curve spline.BPoly
	if err := json.Unmarshal(data, &curve); err != nil {
		return nil, fmt.Errorf("decode motion %q: %w", name, err)
	}
	return &curve, nil
}

// Save stores curve under name, replacing any existing motion.
func (c *Content) Save(name string, curve *spline.BPoly) error {
	if err := ValidName(name); err != nil {
		return err
	}
	if curve == nil {
		return spline.ErrNoCurve
	}
	c.mu.Lock()
	err := c.put(name, curve)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.logger.Debug("saved motion", slog.String("name", name), slog.Int("knots", curve.KnotCount()))
	c.publish(Event{Kind: Saved, Name: name})
	return nil
}

func (c *Content) put(name string, curve *spline.BPoly) error {
	data, err := json.Marshal(curve)
	if err != nil {
		return err
	}
	return c.store.Put(name, data)
}

func (c *Content) Delete(name string) error {
	if err := ValidName(name); err != nil {
		return err
	}
	if err := c.store.Delete(name); err != nil {
		return err
	}
	c.logger.Debug("deleted motion", slog.String("name", name))
	c.publish(Event{Kind: Deleted, Name: name})
	return nil
}

// Rename gives motion from the name to. It fails with ErrExists if to is
// taken.
func (c *Content) Rename(from, to string) error {
	if err := ValidName(from); err != nil {
		return err
	}
	if err := ValidName(to); err != nil {
		return err
	}
	if from == to {
		if !c.Exists(from) {
			return fmt.Errorf("%w: %q", ErrNotFound, from)
		}
		return nil
	}

	c.mu.Lock()
	err := c.rename(from, to)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	c.logger.Debug("renamed motion", slog.String("from", from), slog.String("to", to))
	c.publish(Event{Kind: Renamed, Name: to, From: from})
	return nil
}

func (c *Content) rename(from, to string) error {
	if _, err := c.store.Get(to); err == nil {
		return fmt.Errorf("%w: %q", ErrExists, to)
	}
	if r, ok := c.store.(renamer); ok {
		return r.Rename(from, to)
	}
	data, err := c.store.Get(from)
	if err != nil {
		return err
	}
	if err := c.store.Put(to, data); err != nil {
		return err
	}
	return c.store.Delete(from)
}

// Duplicate copies motion name to a free name derived from it and returns
// the new name.
func (c *Content) Duplicate(name string) (string, error) {
	curve, err := c.Load(name)
	if err != nil {
		return "", err
	}
	c.mu.Lock()
	dup, err := c.findFreeName(name + " copy")
	if err == nil {
		err = c.put(dup, curve)
	}
	c.mu.Unlock()
	if err != nil {
		return "", err
	}
	c.publish(Event{Kind: Saved, Name: dup})
	return dup, nil
}

// FindFreeName returns wish if no motion of that name exists, and otherwise
// the first free name of the form "wish N" for N from 1 to 99.
func (c *Content) FindFreeName(wish string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findFreeName(wish)
}

func (c *Content) findFreeName(wish string) (string, error) {
	if err := ValidName(wish); err != nil {
		return "", err
	}
	keys, err := c.store.Keys()
	if err != nil {
		return "", err
	}
	taken := make(map[string]bool, len(keys))
	for _, k := range keys {
		taken[k] = true
	}
	if !taken[wish] {
		return wish, nil
	}
	for n := 1; n < maxSuffix; n++ {
		if name := fmt.Sprintf("%s %d", wish, n); !taken[name] {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w for %q", ErrNoFreeName, wish)
}

// Create stores a new flat single-segment cubic under a free name.
func (c *Content) Create() (Motion, error) {
	curve, err := spline.Flat(spline.Cubic, []float64{0, 1}, 0)
	if err != nil {
		return Motion{}, err
	}
	c.mu.Lock()
	name, err := c.findFreeName(DefaultName)
	if err == nil {
		err = c.put(name, curve)
	}
	c.mu.Unlock()
	if err != nil {
		return Motion{}, err
	}
	c.logger.Info("created motion", slog.String("name", name))
	c.publish(Event{Kind: Saved, Name: name})
	return Motion{Name: name, Curve: curve}, nil
}

// Fit fits a curve to a recorded trajectory and saves it under name.
func (c *Content) Fit(name string, samples []spline.Point, opts spline.FitOptions) (*spline.BPoly, error) {
	curve, err := spline.Fit(samples, opts)
	if err != nil {
		return nil, err
	}
	if err := c.Save(name, curve); err != nil {
		return nil, err
	}
	return curve, nil
}

// Names lists the motion names, most recently modified first.
func (c *Content) Names() ([]string, error) {
	return c.store.Keys()
}

// List loads all motions, most recently modified first. Motions that cannot
// be decoded are skipped.
func (c *Content) List() ([]Motion, error) {
	names, err := c.store.Keys()
	if err != nil {
		return nil, err
	}
	motions := make([]Motion, 0, len(names))
	for _, name := range names {
		curve, err := c.Load(name)
		if err != nil {
			c.logger.Warn("skipping motion", slog.String("name", name), slog.String("error", err.Error()))
			continue
		}
		motions = append(motions, Motion{Name: name, Curve: curve})
	}
	return motions, nil
}

// Subscribe returns a channel receiving change events until ctx is done.
// Events are dropped for subscribers that do not keep up.
func (c *Content) Subscribe(ctx context.Context) <-chan Event {
	ch := make(chan Event, 16)
	c.subsMu.Lock()
	c.subs[ch] = struct{}{}
	c.subsMu.Unlock()

	go func() {
		<-ctx.Done()
		c.subsMu.Lock()
		delete(c.subs, ch)
		close(ch)
		c.subsMu.Unlock()
	}()
	return ch
}

func (c *Content) publish(ev Event) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	for ch := range c.subs {
		select {
		case ch <- ev:
		default:
			c.logger.Debug("dropped content event", slog.String("kind", ev.Kind.String()))
		}
	}
}
