package pipeline

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/livecoll/errors"
	"github.com/kbukum/livecoll/reactive"
)

var sampleData = []string{"Alpha", "Beta", "Gamma"}

type aged struct {
	name string
	age  *reactive.Observable[int]
}

func newAged(rt *reactive.Runtime, name string, age int) *aged {
	return &aged{name: name, age: reactive.NewObservable(rt, age)}
}

func strlen(s string) int { return len(s) }

func TestMap_ProjectsEveryElement(t *testing.T) {
	rt, _ := newTestRuntime()
	src := reactive.NewArray(rt, sampleData...)

	out := must(MapFunc(src, strlen))
	assertSlice(t, out.Peek(), []int{5, 4, 5})

	byOptions := must(Map(src, MapOptions[string, int]{
		Mapping: func(s string, _ reactive.ReadOnly[int]) int { return len(s) },
	}))
	assertSlice(t, byOptions.Peek(), []int{5, 4, 5})
	if byOptions.Name() != KindMap {
		t.Errorf("expected default name %q, got %q", KindMap, byOptions.Name())
	}
}

func TestMap_NotifiesOnSourceChanges(t *testing.T) {
	rt, _ := newTestRuntime()
	src := reactive.NewArray(rt, sampleData...)
	out := must(MapFunc(src, strlen))
	log := record[int](out)

	if log.count() != 0 {
		t.Fatalf("expected no notification for the initial state, got %d", log.count())
	}

	_ = src.Push("Another")
	if log.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", log.count())
	}
	assertSlice(t, log.last(), []int{5, 4, 5, 7})

	_, _ = src.Splice(1, 1)
	if log.count() != 2 {
		t.Fatalf("expected 2 notifications, got %d", log.count())
	}
	assertSlice(t, log.last(), []int{5, 5, 7})

	_ = src.Mutate(func(items *[]string) { (*items)[1] = "Modified" })
	if log.count() != 3 {
		t.Fatalf("expected 3 notifications, got %d", log.count())
	}
	assertSlice(t, log.last(), []int{5, 8, 7})
}

func TestMap_SameInstanceIsNotAChange(t *testing.T) {
	rt, _ := newTestRuntime()
	type marker struct{ theItem bool }
	shared := &marker{theItem: true}
	src := reactive.NewArray(rt, newAged(rt, "Alpha", 1), newAged(rt, "Beta", 2))

	out := must(MapFunc(src, func(p *aged) *marker {
		_ = p.age.Get()
		return shared
	}))
	log := record[*marker](out)

	_ = src.Peek()[0].age.Set(10)
	if log.count() != 0 {
		t.Errorf("expected no notification, got %d", log.count())
	}
	assertSlice(t, out.Peek(), []*marker{shared, shared})
}

func TestMap_Chained(t *testing.T) {
	rt, _ := newTestRuntime()
	src := reactive.NewArray(rt, sampleData...)
	first := must(MapFunc(src, func(s string) string { return s + strings.ToUpper(s) }))
	second := must(MapFunc(first, strlen))
	log1, log2 := record[string](first), record[int](second)

	assertSlice(t, first.Peek(), []string{"AlphaALPHA", "BetaBETA", "GammaGAMMA"})
	assertSlice(t, second.Peek(), []int{10, 8, 10})

	_ = src.Push("Another")
	if log1.count() != 1 || log2.count() != 1 {
		t.Fatalf("expected one notification each, got %d and %d", log1.count(), log2.count())
	}
	assertSlice(t, log1.last(), []string{"AlphaALPHA", "BetaBETA", "GammaGAMMA", "AnotherANOTHER"})
	assertSlice(t, log2.last(), []int{10, 8, 10, 14})
}

func TestMap_MapsOnlyNewElements(t *testing.T) {
	rt, _ := newTestRuntime()
	src := reactive.NewArray(rt, sampleData...)
	calls := 0
	out := must(MapFunc(src, func(s string) int {
		calls++
		return len(s)
	}))

	steps := []struct {
		name   string
		change func()
		want   []int
		calls  int
	}{
		{"initial", func() {}, []int{5, 4, 5}, 3},
		{"push", func() { _ = src.Push("Another") }, []int{5, 4, 5, 7}, 4},
		{"insert two", func() { _, _ = src.Splice(2, 0, "X", "YZ") }, []int{5, 4, 1, 2, 5, 7}, 6},
		{"delete three", func() { _, _ = src.Splice(2, 3) }, []int{5, 4, 7}, 6},
		{"move", func() { _ = src.Set([]string{"Another", "Beta"}) }, []int{7, 4}, 6},
	}
	for _, step := range steps {
		step.change()
		assertSlice(t, out.Peek(), step.want)
		if calls != step.calls {
			t.Errorf("%s: expected %d mapping calls, got %d", step.name, step.calls, calls)
		}
	}
}

func TestMap_RespondsToElementDependencies(t *testing.T) {
	rt, _ := newTestRuntime()
	prefix := reactive.NewObservable(rt, "")
	src := reactive.NewArray(rt, newAged(rt, "Bert", 123), newAged(rt, "Mollie", 246))
	calls := 0
	out := must(MapFunc(src, func(p *aged) string {
		calls++
		return fmt.Sprintf("%s%s is age %d", prefix.Get(), p.name, p.age.Get())
	}))
	log := record[string](out)

	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}

	_ = src.Peek()[0].age.Set(555)
	if log.count() != 1 || calls != 3 {
		t.Fatalf("expected 1 notification and 3 calls, got %d and %d", log.count(), calls)
	}
	assertSlice(t, out.Peek(), []string{"Bert is age 555", "Mollie is age 246"})

	megatron := newAged(rt, "Megatron", 6)
	_ = src.Push(megatron)
	if log.count() != 2 || calls != 4 {
		t.Fatalf("expected 2 notifications and 4 calls, got %d and %d", log.count(), calls)
	}

	_ = megatron.age.Set(7)
	if log.count() != 3 || calls != 5 {
		t.Fatalf("expected 3 notifications and 5 calls, got %d and %d", log.count(), calls)
	}
	assertSlice(t, out.Peek(), []string{"Bert is age 555", "Mollie is age 246", "Megatron is age 7"})

	_ = prefix.Set("person: ")
	if log.count() != 6 || calls != 8 {
		t.Fatalf("expected 6 notifications and 8 calls, got %d and %d", log.count(), calls)
	}
	assertSlice(t, out.Peek(), []string{"person: Bert is age 555", "person: Mollie is age 246", "person: Megatron is age 7"})
}

func TestMap_IndexAwareMapping(t *testing.T) {
	rt, _ := newTestRuntime()
	src := reactive.NewArray(rt, "Alpha", "Beta")
	calls := 0
	out := must(Map(src, MapOptions[string, string]{
		Mapping: func(s string, index reactive.ReadOnly[int]) string {
			calls++
			return fmt.Sprintf("Item %d is %s", index.Get(), s)
		},
	}))

	steps := []struct {
		name   string
		change func()
		want   []string
		calls  int
	}{
		{"initial", func() {}, []string{"Item 0 is Alpha", "Item 1 is Beta"}, 2},
		{"push", func() { _ = src.Push("Gamma") }, []string{"Item 0 is Alpha", "Item 1 is Beta", "Item 2 is Gamma"}, 3},
		{"remove before", func() { _, _ = src.Remove("Beta") }, []string{"Item 0 is Alpha", "Item 1 is Gamma"}, 4},
		{"insert before", func() { _ = src.Unshift("First") }, []string{"Item 0 is First", "Item 1 is Alpha", "Item 2 is Gamma"}, 7},
		{"move", func() { _ = src.Set([]string{"First", "Gamma", "Alpha"}) }, []string{"Item 0 is First", "Item 1 is Gamma", "Item 2 is Alpha"}, 9},
	}
	for _, step := range steps {
		step.change()
		assertSlice(t, out.Peek(), step.want)
		if calls != step.calls {
			t.Errorf("%s: expected %d mapping calls, got %d", step.name, step.calls, calls)
		}
	}
}

func TestFilterMap_ExcludedElementsAndIndexes(t *testing.T) {
	rt, _ := newTestRuntime()
	alpha := newAged(rt, "Alpha", 100)
	beta := newAged(rt, "Beta", 101)
	gamma := newAged(rt, "Gamma", 102)
	delta := newAged(rt, "Delta", 103)
	epsilon := newAged(rt, "Epsilon", 104)
	src := reactive.NewArray(rt, alpha, beta, gamma)
	calls := 0
	out := must(FilterMap(src, func(p *aged, index reactive.ReadOnly[int]) (string, bool) {
		calls++
		age := p.age.Get()
		if age%2 != 0 {
			return "", false
		}
		return fmt.Sprintf("%d: %s is age %d", index.Get(), p.name, age), true
	}))

	check := func(step string, wantCalls int, want ...string) {
		t.Helper()
		assertSlice(t, out.Peek(), want)
		if wantCalls >= 0 && calls != wantCalls {
			t.Errorf("%s: expected %d calls, got %d", step, wantCalls, calls)
		}
	}

	check("initial", 3, "0: Alpha is age 100", "1: Gamma is age 102")

	_ = gamma.age.Set(200)
	check("mutate included", 4, "0: Alpha is age 100", "1: Gamma is age 200")

	_ = src.Mutate(func(*[]*aged) {})
	check("no-op mutation", 4, "0: Alpha is age 100", "1: Gamma is age 200")

	_, _ = src.Splice(3, 0, delta, epsilon)
	check("append", 6, "0: Alpha is age 100", "1: Gamma is age 200", "2: Epsilon is age 104")

	_ = beta.age.Set(201)
	check("mutate excluded", 7, "0: Alpha is age 100", "1: Gamma is age 200", "2: Epsilon is age 104")

	_ = beta.age.Set(300)
	check("include", -1, "0: Alpha is age 100", "1: Beta is age 300", "2: Gamma is age 200", "3: Epsilon is age 104")

	_ = beta.age.Set(301)
	check("exclude", -1, "0: Alpha is age 100", "1: Gamma is age 200", "2: Epsilon is age 104")

	_ = src.Set([]*aged{alpha, beta, epsilon, gamma, delta})
	check("move", -1, "0: Alpha is age 100", "1: Epsilon is age 104", "2: Gamma is age 200")

	// Delta never read its index while excluded, so it only picks one up
	// once it is included again.
	_ = delta.age.Set(500)
	check("include untracked", -1, "0: Alpha is age 100", "1: Epsilon is age 104", "2: Gamma is age 200", "3: Delta is age 500")

	_ = src.Set([]*aged{gamma, beta, alpha, delta, epsilon})
	check("reorder", -1, "0: Gamma is age 200", "1: Alpha is age 100", "2: Delta is age 500", "3: Epsilon is age 104")

	_, _ = src.Splice(1, 1)
	check("delete excluded", -1, "0: Gamma is age 200", "1: Alpha is age 100", "2: Delta is age 500", "3: Epsilon is age 104")
}

func TestMap_DisposesDependencies(t *testing.T) {
	rt, _ := newTestRuntime()
	bert := newAged(rt, "Bert", 123)
	mollie := newAged(rt, "Mollie", 246)
	src := reactive.NewArray(rt, bert, mollie)
	out := must(MapFunc(src, func(p *aged) string {
		return fmt.Sprintf("%s is age %d", p.name, p.age.Get())
	}))

	if bert.age.SubscriberCount() != 1 || mollie.age.SubscriberCount() != 1 {
		t.Fatalf("expected one subscription per age, got %d and %d", bert.age.SubscriberCount(), mollie.age.SubscriberCount())
	}
	if src.SubscriberCount() != 1 {
		t.Fatalf("expected one source subscription, got %d", src.SubscriberCount())
	}

	_, _ = src.Remove(bert)
	if bert.age.SubscriberCount() != 0 || mollie.age.SubscriberCount() != 1 {
		t.Errorf("expected removal to release bert only, got %d and %d", bert.age.SubscriberCount(), mollie.age.SubscriberCount())
	}

	out.Dispose()
	out.Dispose()
	if mollie.age.SubscriberCount() != 0 {
		t.Errorf("expected dispose to release mollie, got %d", mollie.age.SubscriberCount())
	}
	if src.SubscriberCount() != 0 {
		t.Errorf("expected dispose to unsubscribe from the source, got %d", src.SubscriberCount())
	}
	if !out.Disposed() {
		t.Error("expected Disposed to report true")
	}

	_ = src.Push(newAged(rt, "Late", 1))
	if out.Len() != 1 {
		t.Errorf("expected a disposed output to stop following the source, got %d elements", out.Len())
	}
}

func TestMap_Nested(t *testing.T) {
	type group struct {
		id    string
		items *reactive.Array[string]
	}
	type view struct {
		id     string
		things *Collection[string]
	}
	rt, _ := newTestRuntime()
	src := reactive.NewArray(rt,
		&group{"1", reactive.NewArray(rt, "Alpha", "Beta", "Gamma")},
		&group{"2", reactive.NewArray(rt, "Delta")},
		&group{"3", reactive.NewArray[string](rt)},
	)
	outer, inner := 0, 0
	out := must(Map(src, MapOptions[*group, view]{
		MappingWithDispose: func(g *group, _ reactive.ReadOnly[int]) Mapped[view] {
			outer++
			things := must(MapFunc(g.items, func(s string) string {
				inner++
				return "name:" + s
			}))
			return Mapped[view]{Value: view{id: g.id, things: things}, Dispose: things.Dispose}
		},
	}))

	flatten := func() []string {
		var all []string
		for _, v := range out.Peek() {
			all = append(all, v.id+"="+strings.Join(v.things.Peek(), ","))
		}
		return all
	}

	assertSlice(t, flatten(), []string{"1=name:Alpha,name:Beta,name:Gamma", "2=name:Delta", "3="})
	if outer != 3 || inner != 4 {
		t.Fatalf("expected 3 outer and 4 inner calls, got %d and %d", outer, inner)
	}

	_ = src.Peek()[1].items.Push("Epsilon")
	assertSlice(t, flatten(), []string{"1=name:Alpha,name:Beta,name:Gamma", "2=name:Delta,name:Epsilon", "3="})
	if outer != 3 || inner != 5 {
		t.Fatalf("expected 3 outer and 5 inner calls, got %d and %d", outer, inner)
	}

	removed := src.Peek()[1]
	_, _ = src.Splice(1, 1, &group{"new", reactive.NewArray(rt, "NewChild1", "NewChild2")})
	assertSlice(t, flatten(), []string{"1=name:Alpha,name:Beta,name:Gamma", "new=name:NewChild1,name:NewChild2", "3="})
	if outer != 4 || inner != 7 {
		t.Fatalf("expected 4 outer and 7 inner calls, got %d and %d", outer, inner)
	}
	if removed.items.SubscriberCount() != 0 {
		t.Errorf("expected the replaced group's inner map to be disposed")
	}
}

func TestMap_DisposeItem(t *testing.T) {
	type upper struct{ name *reactive.Computed[string] }
	rt, _ := newTestRuntime()
	name := reactive.NewObservable(rt, "Annie")
	src := reactive.NewArray[*reactive.Observable[string]](rt)
	var disposed []string
	out := must(Map(src, MapOptions[*reactive.Observable[string], *upper]{
		Mapping: func(n *reactive.Observable[string], _ reactive.ReadOnly[int]) *upper {
			return &upper{name: reactive.NewComputed(rt, func() string { return strings.ToUpper(n.Get()) })}
		},
		DisposeItem: func(u *upper) {
			disposed = append(disposed, u.name.Peek())
			u.name.Dispose()
		},
	}))

	_ = src.Push(name)
	_ = src.Push(name)
	if name.SubscriberCount() != 2 {
		t.Fatalf("expected 2 subscriptions, got %d", name.SubscriberCount())
	}

	_, _, _ = src.Pop()
	if name.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscription, got %d", name.SubscriberCount())
	}
	assertSlice(t, disposed, []string{"ANNIE"})

	_ = name.Set("Clarabel")
	if got := out.Peek()[0].name.Peek(); got != "CLARABEL" {
		t.Errorf("expected CLARABEL, got %q", got)
	}
	if name.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscription, got %d", name.SubscriberCount())
	}

	out.Dispose()
	if name.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscriptions, got %d", name.SubscriberCount())
	}
	assertSlice(t, disposed, []string{"ANNIE", "CLARABEL"})
}

func TestMap_DisposeItemOnReplaceInPlace(t *testing.T) {
	type upper struct {
		name  string
		index int
	}
	rt, _ := newTestRuntime()
	first := reactive.NewObservable(rt, "Annie")
	second := reactive.NewObservable(rt, "Clarabel")
	src := reactive.NewArray[*reactive.Observable[string]](rt)
	next := 0
	var disposed []int
	out := must(Map(src, MapOptions[*reactive.Observable[string], *upper]{
		Mapping: func(n *reactive.Observable[string], _ reactive.ReadOnly[int]) *upper {
			u := &upper{name: strings.ToUpper(n.Get()), index: next}
			next++
			return u
		},
		DisposeItem: func(u *upper) { disposed = append(disposed, u.index) },
	}))
	names := func() []string {
		var s []string
		for _, u := range out.Peek() {
			s = append(s, fmt.Sprintf("%s#%d", u.name, u.index))
		}
		return s
	}

	_ = src.Push(first)
	_ = src.Push(second)
	assertSlice(t, names(), []string{"ANNIE#0", "CLARABEL#1"})
	if len(disposed) != 0 {
		t.Fatalf("expected nothing disposed, got %v", disposed)
	}

	_ = second.Set("ClarabelMutated")
	assertSlice(t, names(), []string{"ANNIE#0", "CLARABELMUTATED#2"})
	assertSlice(t, disposed, []int{1})

	_ = src.Reverse()
	assertSlice(t, names(), []string{"CLARABELMUTATED#2", "ANNIE#0"})
	assertSlice(t, disposed, []int{1})

	_, _, _ = src.Shift()
	assertSlice(t, names(), []string{"ANNIE#0"})
	assertSlice(t, disposed, []int{1, 2})
}

func TestMap_MappingWithDispose(t *testing.T) {
	rt, _ := newTestRuntime()
	alpha := reactive.NewObservable(rt, "alpha")
	src := reactive.NewArray(rt, alpha, reactive.NewObservable(rt, "beta"), reactive.NewObservable(rt, "gamma"))
	resources := map[string]bool{}
	out := must(Map(src, MapOptions[*reactive.Observable[string], string]{
		MappingWithDispose: func(n *reactive.Observable[string], _ reactive.ReadOnly[int]) Mapped[string] {
			name := n.Get()
			resources[name] = false
			return Mapped[string]{Value: strings.ToUpper(name), Dispose: func() { resources[name] = true }}
		},
	}))
	assertResources := func(want map[string]bool) {
		t.Helper()
		if len(resources) != len(want) {
			t.Fatalf("got %v, want %v", resources, want)
		}
		for k, v := range want {
			if resources[k] != v {
				t.Errorf("resource %s: got disposed=%v, want %v", k, resources[k], v)
			}
		}
	}

	assertSlice(t, out.Peek(), []string{"ALPHA", "BETA", "GAMMA"})
	assertResources(map[string]bool{"alpha": false, "beta": false, "gamma": false})

	_, _ = src.Splice(1, 1)
	assertSlice(t, out.Peek(), []string{"ALPHA", "GAMMA"})
	assertResources(map[string]bool{"alpha": false, "beta": true, "gamma": false})

	_ = src.Reverse()
	assertSlice(t, out.Peek(), []string{"GAMMA", "ALPHA"})
	assertResources(map[string]bool{"alpha": false, "beta": true, "gamma": false})

	_ = alpha.Set("replaced")
	assertSlice(t, out.Peek(), []string{"GAMMA", "REPLACED"})
	assertResources(map[string]bool{"alpha": true, "beta": true, "gamma": false, "replaced": false})
}

func TestMap_DisposesOnEveryReplacement(t *testing.T) {
	type constant struct{ mapped bool }
	rt, _ := newTestRuntime()
	value := &constant{mapped: true}
	src := reactive.NewArray(rt, 1, 2, 3)
	count := 0
	out := must(Map(src, MapOptions[int, *constant]{
		MappingWithDispose: func(int, reactive.ReadOnly[int]) Mapped[*constant] {
			return Mapped[*constant]{Value: value, Dispose: func() { count++ }}
		},
	}))

	steps := []struct {
		name   string
		change func()
		len    int
		count  int
	}{
		{"push", func() { _ = src.Push(4) }, 4, 0},
		{"remove", func() { _, _ = src.Splice(1, 2) }, 2, 2},
		{"reverse", func() { _ = src.Reverse() }, 2, 2},
		{"replace", func() { _ = src.Set([]int{5, 6}) }, 2, 4},
		{"dispose", out.Dispose, 2, 6},
	}
	for _, step := range steps {
		step.change()
		if out.Len() != step.len {
			t.Errorf("%s: expected %d elements, got %d", step.name, step.len, out.Len())
		}
		if count != step.count {
			t.Errorf("%s: expected %d disposals, got %d", step.name, step.count, count)
		}
	}
}

func TestMap_Throttle(t *testing.T) {
	rt, sched := newTestRuntime()
	src := reactive.NewArray(rt, 1, 2, 3)
	factor := reactive.NewObservable(rt, 1)
	out := must(Map(src, MapOptions[int, int]{
		Mapping:  func(x int, _ reactive.ReadOnly[int]) int { return x * factor.Get() },
		Throttle: 200 * time.Millisecond,
	}))
	log := record[int](out)

	assertSlice(t, out.Peek(), []int{1, 2, 3})

	_ = factor.Set(5)
	if log.count() != 0 {
		t.Fatalf("expected no notification before the throttle elapses, got %d", log.count())
	}
	assertSlice(t, out.Peek(), []int{1, 2, 3})

	sched.Advance(201 * time.Millisecond)
	if log.count() != 1 {
		t.Fatalf("expected exactly one notification, got %d", log.count())
	}
	assertSlice(t, out.Peek(), []int{5, 10, 15})
}

func TestMap_ThrottleFlushAndDefault(t *testing.T) {
	sched := reactive.NewManualScheduler()
	rt := reactive.NewRuntime(reactive.WithScheduler(sched), reactive.WithDefaultThrottle(time.Second))
	src := reactive.NewArray(rt, 1)

	throttled := must(MapFunc(src, func(x int) int { return x }))
	immediate := must(MapFunc(src, func(x int) int { return x }, WithThrottle(-1)))

	_ = src.Push(2)
	assertSlice(t, throttled.Peek(), []int{1})
	assertSlice(t, immediate.Peek(), []int{1, 2})

	if err := throttled.Flush(); err != nil {
		t.Fatalf("unexpected flush error: %v", err)
	}
	assertSlice(t, throttled.Peek(), []int{1, 2})
	if sched.Pending() != 0 {
		t.Errorf("expected flush to cancel the timer, %d pending", sched.Pending())
	}

	_ = src.Push(3)
	throttled.Dispose()
	sched.Advance(2 * time.Second)
	assertSlice(t, throttled.Peek(), []int{1, 2})
}

func TestMap_ConfigurationErrors(t *testing.T) {
	rt, _ := newTestRuntime()
	src := reactive.NewArray(rt, 1, 2, 3)
	mapping := func(x int, _ reactive.ReadOnly[int]) int { return x }
	withDispose := func(x int, _ reactive.ReadOnly[int]) Mapped[int] { return Mapped[int]{Value: x} }

	tests := []struct {
		name string
		opts MapOptions[int, int]
		want string
	}{
		{"empty", MapOptions[int, int]{}, "specify either Mapping or MappingWithDispose"},
		{"both mappings", MapOptions[int, int]{Mapping: mapping, MappingWithDispose: withDispose},
			"MappingWithDispose cannot be used in conjunction with Mapping or DisposeItem"},
		{"dispose item", MapOptions[int, int]{MappingWithDispose: withDispose, DisposeItem: func(int) {}},
			"MappingWithDispose cannot be used in conjunction with Mapping or DisposeItem"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Map(src, tt.opts)
			if !errors.HasCode(err, errors.ErrCodeConfiguration) {
				t.Fatalf("expected a configuration error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
	if src.SubscriberCount() != 0 {
		t.Errorf("expected failed construction to leave the source untouched")
	}
}

func TestMap_DisposedSource(t *testing.T) {
	rt, _ := newTestRuntime()
	src := reactive.NewArray(rt, 1)
	first := must(MapFunc(src, func(x int) int { return x }))
	first.Dispose()

	_, err := MapFunc(first, func(x int) int { return x })
	if !errors.HasCode(err, errors.ErrCodeDisposed) {
		t.Errorf("expected a disposed error, got %v", err)
	}
}
