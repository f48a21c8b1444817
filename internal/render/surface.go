package render

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNoMount reports a render against a mount point that was never registered.
var ErrNoMount = errors.New("render: mount point not found")

// Drawer turns a spec into markup.
type Drawer interface {
	Draw(spec Spec, size Size) (template.HTML, error)
}

// DrawerFunc adapts a function to Drawer.
type DrawerFunc func(spec Spec, size Size) (template.HTML, error)

// Draw calls f.
func (f DrawerFunc) Draw(spec Spec, size Size) (template.HTML, error) { return f(spec, size) }

// Instance is a live chart attached to a mount point.
type Instance struct {
	ID        uuid.UUID
	Mount     string
	Spec      Spec
	Size      Size
	Output    template.HTML
	CreatedAt time.Time
}

type mount struct {
	size     Size
	instance *Instance
}

// Surface owns named mount points and the chart instance attached to each.
type Surface struct {
	mu        sync.Mutex
	drawer    Drawer
	logger    *slog.Logger
	mounts    map[string]*mount
	now       func() time.Time
	created   int
	destroyed int
}

// NewSurface constructs an empty surface.
func NewSurface(drawer Drawer, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.Default()
	}
	return &Surface{
		drawer: drawer,
		logger: logger,
		mounts: make(map[string]*mount),
		now:    time.Now,
	}
}

// Mount registers a mount point. Re-mounting keeps any live instance and
// updates its size on the next render.
func (s *Surface) Mount(name string, size Size) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.mounts[name]; ok {
		m.size = size.orDefault()
		return
	}
	s.mounts[name] = &mount{size: size.orDefault()}
}

// Unmount removes a mount point and destroys its instance.
func (s *Surface) Unmount(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.mounts[name]; ok {
		s.destroyLocked(m)
		delete(s.mounts, name)
	}
}

// Render destroys any instance on the mount and draws spec in its place.
func (s *Surface) Render(name string, spec Spec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mounts[name]
	if !ok {
		return ErrNoMount
	}
	s.destroyLocked(m)
	out, err := s.drawer.Draw(spec, m.size)
	if err != nil {
		return fmt.Errorf("render: draw %s: %w", name, err)
	}
	m.instance = &Instance{
		ID:        uuid.New(),
		Mount:     name,
		Spec:      spec,
		Size:      m.size,
		Output:    out,
		CreatedAt: s.now(),
	}
	s.created++
	return nil
}

// Destroy releases the instance on a mount, leaving the mount registered.
func (s *Surface) Destroy(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.mounts[name]; ok {
		s.destroyLocked(m)
	}
}

// Resize changes the mount size and redraws the live instance, if any.
func (s *Surface) Resize(name string, size Size) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mounts[name]
	if !ok {
		return ErrNoMount
	}
	m.size = size.orDefault()
	if m.instance == nil {
		return nil
	}
	spec := m.instance.Spec
	s.destroyLocked(m)
	out, err := s.drawer.Draw(spec, m.size)
	if err != nil {
		s.logger.Warn("render: resize failed", slog.String("mount", name), slog.Any("error", err))
		return fmt.Errorf("render: resize %s: %w", name, err)
	}
	m.instance = &Instance{ID: uuid.New(), Mount: name, Spec: spec, Size: m.size, Output: out, CreatedAt: s.now()}
	s.created++
	return nil
}

// Instance returns a copy of the live instance on a mount.
func (s *Surface) Instance(name string) (Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mounts[name]
	if !ok || m.instance == nil {
		return Instance{}, false
	}
	return *m.instance, true
}

// Mounts lists registered mount names.
func (s *Surface) Mounts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.mounts))
	for name := range s.mounts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Live returns the number of attached instances. Every render destroys
// before creating, so this never exceeds the mount count.
func (s *Surface) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.created - s.destroyed
}

func (s *Surface) destroyLocked(m *mount) {
	if m.instance == nil {
		return
	}
	m.instance = nil
	s.destroyed++
}

// Mux routes specs to a drawer by kind, falling back to Default.
type Mux struct {
	Default Drawer
	ByKind  map[Kind]Drawer
}

// Draw implements Drawer.
func (m Mux) Draw(spec Spec, size Size) (template.HTML, error) {
	if d, ok := m.ByKind[spec.Kind]; ok {
		return d.Draw(spec, size)
	}
	if m.Default == nil {
		return "", fmt.Errorf("render: no drawer for %q", spec.Kind)
	}
	return m.Default.Draw(spec, size)
}
