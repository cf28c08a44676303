// Package engine resolves class names into concrete styles against live
// runtime environment, memoizes results and notifies subscribers when
// environment changes.
package engine

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"stylewind/common"
	"stylewind/config"
	"stylewind/state"
	"stylewind/style"
)

type listener struct {
	id uint64
	fn func()
}

// Engine owns rule table, variables, result cache and listeners. All methods
// are safe for concurrent use, listeners are always called without internal
// lock held.
type Engine struct {
	mu  sync.Mutex
	log *zap.Logger
	rt  *state.Runtime

	themes     []string
	generated  *style.Generated
	stylesheet style.Stylesheet
	vars       style.Vars

	cache     map[string]*style.Result
	listeners map[common.Dependency][]listener
	nextID    uint64
}

// New creates engine over runtime and immediately generates rule table with
// gen. Themes limit names accepted by SetTheme, empty list accepts anything.
func New(rt *state.Runtime, log *zap.Logger, gen style.GenerateFunc, themes []string) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{
		log:       log.Named("engine"),
		rt:        rt,
		themes:    themes,
		vars:      style.Vars{},
		cache:     make(map[string]*style.Result),
		listeners: make(map[common.Dependency][]listener),
	}
	e.Reinit(gen)
	return e
}

// FromEnv creates engine for local environment.
func FromEnv(env *state.LocalEnv, gen style.GenerateFunc) *Engine {
	return New(env.Runtime, env.Log, gen, env.Cfg.Style.AllThemes())
}

// Runtime returns live runtime engine works with. Callers must not modify it
// directly, use mutators instead.
func (e *Engine) Runtime() *state.Runtime {
	return e.rt
}

// Resolve computes styles for space separated class names in given
// interaction state. Results are cached until any of their dependencies
// changes and must not be modified.
func (e *Engine) Resolve(classNames string, st style.ComponentState) *style.Result {
	if strings.TrimSpace(classNames) == "" {
		return style.EmptyResult()
	}
	key := classNames + "\x00" + st.Key()

	e.mu.Lock()
	defer e.mu.Unlock()

	if r, ok := e.cache[key]; ok {
		return r
	}
	r := e.resolve(classNames, st)
	e.cache[key] = r

	if len(r.Dependencies) > 0 {
		var id uint64
		evict := func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if e.cache[key] == r {
				delete(e.cache, key)
			}
			e.unsubscribe(id, r.Dependencies)
		}
		id = e.subscribe(evict, r.Dependencies)
	}
	return r
}

// resolve is called with lock held. Winners are selected first, their values
// are computed afterwards so that variables set by any winning rule are
// visible to every value regardless of declaration order.
func (e *Engine) resolve(classNames string, st style.ComponentState) *style.Result {
	var (
		winners   = make(map[string]*style.Rule)
		accessors = make(map[string]style.Accessor)
		order     []string
		overrides style.Vars
		deps      []common.Dependency
	)

	for _, class := range strings.Fields(classNames) {
		rules, ok := e.stylesheet[class]
		if !ok {
			continue
		}
		for i := range rules {
			r := &rules[i]
			deps = append(deps, r.Dependencies...)
			if !r.Matches(e.rt, st) {
				continue
			}
			for _, entry := range r.Entries {
				if prev, ok := winners[entry.Property]; ok && prev.Outranks(r, entry.Property) {
					continue
				}
				winners[entry.Property] = r

				if style.IsVar(entry.Property) {
					if overrides == nil {
						overrides = make(style.Vars)
					}
					overrides[entry.Property] = entry.Value
					continue
				}
				if _, seen := accessors[entry.Property]; !seen {
					order = append(order, entry.Property)
				}
				accessors[entry.Property] = entry.Value
			}
		}
	}

	vars := e.vars
	if overrides != nil {
		vars = e.vars.Clone()
		vars.Merge(overrides)
	}
	scope := vars.Scope()

	styles := make(map[string]any, len(order))
	for _, property := range order {
		if v := accessors[property](scope); v != nil {
			styles[property] = v
		}
	}
	normalize(styles)

	deps = lo.Uniq(deps)
	slices.Sort(deps)
	if deps == nil {
		deps = []common.Dependency{}
	}
	return &style.Result{Styles: styles, Dependencies: deps}
}

// Subscribe registers cb for every listed dependency. Returned function
// removes registration, calling it more than once is harmless.
func (e *Engine) Subscribe(cb func(), deps []common.Dependency) (dispose func()) {
	e.mu.Lock()
	id := e.subscribe(cb, deps)
	e.mu.Unlock()

	deps = slices.Clone(deps)
	return sync.OnceFunc(func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		e.unsubscribe(id, deps)
	})
}

func (e *Engine) subscribe(cb func(), deps []common.Dependency) uint64 {
	e.nextID++
	for _, d := range deps {
		e.listeners[d] = append(e.listeners[d], listener{id: e.nextID, fn: cb})
	}
	return e.nextID
}

func (e *Engine) unsubscribe(id uint64, deps []common.Dependency) {
	for _, d := range deps {
		e.listeners[d] = slices.DeleteFunc(e.listeners[d], func(l listener) bool { return l.id == id })
	}
}

func (e *Engine) subscribed(id uint64, dep common.Dependency) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.ContainsFunc(e.listeners[dep], func(l listener) bool { return l.id == id })
}

// NotifyListeners calls listeners of every dependency in registration order.
// Listeners removed by earlier listeners during the same notification are
// skipped, listeners added during notification are not called.
func (e *Engine) NotifyListeners(deps ...common.Dependency) {
	for _, d := range deps {
		e.mu.Lock()
		snapshot := slices.Clone(e.listeners[d])
		e.mu.Unlock()

		e.log.Debug("Notifying listeners", zap.Stringer("dependency", d), zap.Int("count", len(snapshot)))
		for _, l := range snapshot {
			if e.subscribed(l.id, d) {
				l.fn()
			}
		}
	}
}

// Reinit replaces rule table and variables with what gen produces for
// current runtime. Nil gen reuses last generated table, which is how
// variables are reseeded after theme change. Cached results are kept,
// callers changing rule table must notify dependents themselves.
func (e *Engine) Reinit(gen style.GenerateFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reinit(gen)
}

func (e *Engine) reinit(gen style.GenerateFunc) {
	if gen != nil {
		g := gen(e.rt)
		e.generated = &g
	}
	if e.generated == nil {
		return
	}

	e.stylesheet = e.generated.Stylesheet
	e.vars = e.generated.Vars.Clone()
	if e.vars == nil {
		e.vars = style.Vars{}
	}

	scopes := []string{style.ThemeScope(e.rt.ThemeName)}
	if common.PlatformNative.Matches(e.rt.Platform) && e.rt.Platform != common.PlatformNative {
		scopes = append(scopes, style.PlatformScope(common.PlatformNative))
	}
	scopes = append(scopes, style.PlatformScope(e.rt.Platform))
	for _, s := range scopes {
		if vars, ok := e.generated.ScopedVars[s]; ok {
			e.vars.Merge(vars)
		}
	}

	e.log.Debug("Rule table loaded",
		zap.Int("classes", len(e.stylesheet)),
		zap.Int("vars", len(e.vars)),
		zap.String("theme", e.rt.ThemeName),
		zap.String("platform", string(e.rt.Platform)))
}

// OnDimensionsChange updates screen size and orientation. Orientation
// listeners are notified only when orientation actually changes.
func (e *Engine) OnDimensionsChange(width, height float64) {
	e.mu.Lock()
	orientation := common.OrientationOf(width, height)
	changed := orientation != e.rt.Orientation
	e.rt.Screen = state.Screen{Width: width, Height: height}
	e.rt.Orientation = orientation
	e.mu.Unlock()

	if changed {
		e.NotifyListeners(common.DependencyOrientation, common.DependencyDimensions)
		return
	}
	e.NotifyListeners(common.DependencyDimensions)
}

// OnColorSchemeChange records new host color scheme. When theme follows
// color scheme theme variables are reseeded and theme listeners notified
// too.
func (e *Engine) OnColorSchemeChange(scheme common.ColorScheme) {
	e.mu.Lock()
	if scheme == e.rt.ColorScheme {
		e.mu.Unlock()
		return
	}
	e.rt.ColorScheme = scheme
	deps := []common.Dependency{common.DependencyColorScheme}
	if e.rt.Adaptive && e.rt.ThemeName != scheme.String() {
		e.rt.ThemeName = scheme.String()
		e.reinit(nil)
		deps = append(deps, common.DependencyTheme)
	}
	e.mu.Unlock()

	e.NotifyListeners(deps...)
}

// SetTheme switches current theme. "system" makes theme follow color
// scheme.
func (e *Engine) SetTheme(name string) error {
	e.mu.Lock()
	adaptive := name == config.SystemTheme
	theme := name
	if adaptive {
		theme = e.rt.ColorScheme.String()
	} else if len(e.themes) > 0 && !slices.Contains(e.themes, name) {
		e.mu.Unlock()
		return fmt.Errorf("unknown theme %q, known themes: %s", name, strings.Join(e.themes, ", "))
	}
	e.rt.Adaptive = adaptive
	if theme == e.rt.ThemeName {
		e.mu.Unlock()
		return nil
	}
	e.rt.ThemeName = theme
	e.reinit(nil)
	e.mu.Unlock()

	e.log.Debug("Theme changed", zap.String("theme", theme), zap.Bool("adaptive", adaptive))
	e.NotifyListeners(common.DependencyTheme)
	return nil
}

// OnInsetsChange updates safe area insets.
func (e *Engine) OnInsetsChange(insets state.Insets) {
	e.mu.Lock()
	e.rt.Insets = insets
	e.mu.Unlock()
	e.NotifyListeners(common.DependencyInsets)
}

// OnFontScaleChange replaces font scale multiplier.
func (e *Engine) OnFontScaleChange(scale float64) {
	if scale <= 0 {
		scale = 1
	}
	e.mu.Lock()
	e.rt.FontScale = func(v float64) float64 { return v * scale }
	e.mu.Unlock()
	e.NotifyListeners(common.DependencyFontScale)
}

// OnDirectionChange switches layout direction.
func (e *Engine) OnDirectionChange(rtl bool) {
	e.mu.Lock()
	if e.rt.RTL == rtl {
		e.mu.Unlock()
		return
	}
	e.rt.RTL = rtl
	e.mu.Unlock()
	e.NotifyListeners(common.DependencyRtl)
}

// Teardown drops cached results and all listeners.
func (e *Engine) Teardown() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]*style.Result)
	e.listeners = make(map[common.Dependency][]listener)
}
