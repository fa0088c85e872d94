package symbols

import (
	"sync"
	"testing"
)

func declare(t *testing.T, tab *Table, ty Type) TypeID {
	t.Helper()
	id, ok := tab.Declare(ty)
	if !ok {
		t.Fatalf("type %s already declared", ty.Name)
	}
	return id
}

func virtual(tab *Table, owner TypeID, name string, abstract bool, params ...Param) MethodID {
	return tab.AddMethod(Method{
		Name:      name,
		Declaring: owner,
		Params:    params,
		Return:    tab.Special(SpecialPhpValue),
		Access:    Public,
		Virtual:   true,
		Abstract:  abstract,
	})
}

func TestSpecialTypes(t *testing.T) {
	tab := NewTable()
	obj := tab.Special(SpecialObject)
	if !obj.IsValid() || tab.Type(obj).Name != "object" {
		t.Fatalf("object special missing")
	}
	str := tab.Special(SpecialPhpString)
	if !tab.Type(str).Special.IsPhpSurrogate() || !tab.IsReference(str) {
		t.Fatalf("PhpString must be a reference surrogate")
	}
	if tab.IsReference(tab.Special(SpecialPhpValue)) {
		t.Fatalf("PhpValue is a value type")
	}
	if !tab.IsArray(tab.Special(SpecialPhpArray)) {
		t.Fatalf("PhpArray must be an array type")
	}
	if id, ok := tab.Lookup("PHPVALUE"); !ok || id != tab.Special(SpecialPhpValue) {
		t.Fatalf("lookup must be case-insensitive")
	}
}

func TestDeclareRejectsDuplicates(t *testing.T) {
	tab := NewTable()
	a := declare(t, tab, Type{Name: "Foo", Kind: KindClass})
	again, ok := tab.Declare(Type{Name: "foo", Kind: KindClass})
	if ok || again != a {
		t.Fatalf("duplicate declaration must return existing id")
	}
}

func TestIsAFollowsBasesAndInterfaces(t *testing.T) {
	tab := NewTable()
	obj := tab.Special(SpecialObject)
	j := declare(t, tab, Type{Name: "J", Kind: KindInterface})
	i := declare(t, tab, Type{Name: "I", Kind: KindInterface, Interfaces: []TypeID{j}})
	a := declare(t, tab, Type{Name: "A", Kind: KindClass, Base: obj, Interfaces: []TypeID{i}})
	b := declare(t, tab, Type{Name: "B", Kind: KindClass, Base: a})

	for _, tc := range []struct {
		from, to TypeID
		want     bool
	}{
		{b, a, true}, {b, obj, true}, {b, i, true}, {b, j, true}, {a, b, false}, {j, i, false},
	} {
		if got := tab.IsA(tc.from, tc.to); got != tc.want {
			t.Fatalf("IsA(%s, %s) = %v", tab.TypeName(tc.from), tab.TypeName(tc.to), got)
		}
	}
	all := tab.AllInterfaces(b)
	if len(all) != 2 || !all[i] || !all[j] {
		t.Fatalf("unexpected interfaces %v", all)
	}
}

func TestFunctionsShareNames(t *testing.T) {
	tab := NewTable()
	tab.AddMethod(Method{Name: "foo", Static: true})
	tab.AddMethod(Method{Name: "FOO", Static: true})
	if got := tab.Functions("Foo"); len(got) != 2 {
		t.Fatalf("expected 2 overloads, got %d", len(got))
	}
}

func TestArity(t *testing.T) {
	m := Method{Params: []Param{{IsContext: true}, {}, {HasDefault: true}, {IsVariadic: true}}}
	if mand, max := m.Arity(); mand != 1 || max != -1 {
		t.Fatalf("Arity = %d, %d", mand, max)
	}
	m = Method{Params: []Param{{HasDefault: true}, {}}}
	if mand, max := m.Arity(); mand != 2 || max != 2 {
		t.Fatalf("Arity with trailing mandatory = %d, %d", mand, max)
	}
}

func TestMemoComputesOnce(t *testing.T) {
	var memo Memo[int, int]
	var mu sync.Mutex
	calls := 0
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v := memo.Get(7, func() int {
				mu.Lock()
				calls++
				mu.Unlock()
				return 42
			})
			if v != 42 {
				t.Errorf("Get = %d", v)
			}
		}()
	}
	wg.Wait()
	if calls != 1 || memo.Len() != 1 {
		t.Fatalf("compute ran %d times", calls)
	}
}
