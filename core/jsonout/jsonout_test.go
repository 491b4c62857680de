package jsonout

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/FocuswithJustin/Lingonberry/core/pgf"
)

// orderedGrammar declares names in deliberately non-alphabetical order so
// the tests can tell declaration order from map-style sorted output.
func orderedGrammar() *pgf.Grammar {
	flags := pgf.NewTable[pgf.Literal]()
	flags.Set("zeta", pgf.Literal{Kind: pgf.LiteralStr, Str: "last-first"})
	flags.Set("alpha", pgf.Literal{Kind: pgf.LiteralInt, Int: 7})
	flags.Set("mid", pgf.Literal{Kind: pgf.LiteralFlt, Flt: 1.5})

	funs := pgf.NewTable[pgf.Function]()
	funs.Set("Zebra", pgf.Function{Name: "Zebra", Result: "S"})
	funs.Set("Apple", pgf.Function{Name: "Apple", Args: []string{"S"}, Result: "S"})

	cnc := &pgf.Concrete{
		Name:       "OrdEng",
		Flags:      pgf.NewTable[pgf.Literal](),
		PrintNames: pgf.NewTable[string](),
		Literals:   []string{"zebra"},
		Sequences: [][]pgf.Symbol{
			{{Kind: pgf.SymLit, Lit: 0}},
			{{Kind: pgf.SymArg, Arg: 0, Field: 0}},
			{{Kind: pgf.SymParam, Arg: 0, Cases: []int{0}}},
		},
		Productions: pgf.NewTable[[]*pgf.Rule](),
	}
	cnc.Flags.Set("language", pgf.Literal{Kind: pgf.LiteralStr, Str: "en_US"})
	cnc.PrintNames.Set("Zebra", "a zebra")
	cnc.Productions.Set("S", []*pgf.Rule{
		{Fun: "Zebra", Fields: []int{0}},
		{Fun: "Apple", Args: []string{"S"}, Param: 2, Fields: []int{1}},
	})

	concretes := pgf.NewTable[*pgf.Concrete]()
	concretes.Set(cnc.Name, cnc)

	return &pgf.Grammar{
		Name:       "Ord",
		Start:      "S",
		Flags:      flags,
		Categories: []string{"S"},
		Functions:  funs,
		Concretes:  concretes,
	}
}

func TestProjectShape(t *testing.T) {
	out, err := Project(orderedGrammar())
	if err != nil {
		t.Fatalf("Project: %v", err)
	}

	var doc struct {
		Abstract struct {
			Name     string                     `json:"name"`
			Startcat string                     `json:"startcat"`
			Flags    map[string]json.RawMessage `json:"flags"`
			Cats     []string                   `json:"cats"`
			Funs     map[string]struct {
				Args []string `json:"args"`
				Cat  string   `json:"cat"`
			} `json:"funs"`
		} `json:"abstract"`
		Concretes map[string]struct {
			Flags      map[string]string `json:"flags"`
			Printnames map[string]string `json:"printnames"`
			Literals   []string          `json:"literals"`
			Sequences  [][]map[string]json.RawMessage `json:"sequences"`
			Productions map[string][]struct {
				Fun    string   `json:"fun"`
				Args   []string `json:"args"`
				Param  int      `json:"param"`
				Fields []int    `json:"fields"`
			} `json:"productions"`
		} `json:"concretes"`
	}
	if err := json.Unmarshal(out, &doc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}

	if doc.Abstract.Name != "Ord" || doc.Abstract.Startcat != "S" {
		t.Errorf("abstract header: %+v", doc.Abstract)
	}
	if len(doc.Abstract.Flags) != 3 {
		t.Errorf("flags: %v", doc.Abstract.Flags)
	}
	zebra, ok := doc.Abstract.Funs["Zebra"]
	if !ok || zebra.Cat != "S" {
		t.Errorf("Zebra: %+v, %v", zebra, ok)
	}
	if zebra.Args == nil || len(zebra.Args) != 0 {
		t.Errorf("zero-argument function args: %v", zebra.Args)
	}

	eng, ok := doc.Concretes["OrdEng"]
	if !ok {
		t.Fatalf("concretes: %v", doc.Concretes)
	}
	if eng.Flags["language"] != "en_US" || eng.Printnames["Zebra"] != "a zebra" {
		t.Errorf("concrete tables: %+v", eng)
	}
	if len(eng.Sequences) != 3 {
		t.Fatalf("sequences: %v", eng.Sequences)
	}
	rules := eng.Productions["S"]
	if len(rules) != 2 || rules[1].Fun != "Apple" || rules[1].Param != 2 || rules[1].Fields[0] != 1 {
		t.Errorf("productions: %+v", rules)
	}
	if rules[0].Args == nil || len(rules[0].Args) != 0 {
		t.Errorf("zero-argument rule args: %v", rules[0].Args)
	}
}

func TestProjectDeclarationOrder(t *testing.T) {
	out, err := Project(orderedGrammar())
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	s := string(out)

	// Flag and function keys appear in declaration order, not sorted.
	pairs := [][2]string{
		{`"zeta"`, `"alpha"`},
		{`"alpha"`, `"mid"`},
		{`"Zebra"`, `"Apple"`},
		{`"abstract"`, `"concretes"`},
	}
	for _, p := range pairs {
		i, j := strings.Index(s, p[0]), strings.Index(s, p[1])
		if i < 0 || j < 0 {
			t.Fatalf("missing key %v in %s", p, s)
		}
		if i > j {
			t.Errorf("%s appears after %s", p[0], p[1])
		}
	}
}

func TestProjectDeterministic(t *testing.T) {
	g := orderedGrammar()
	a, err := Project(g)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	b, err := Project(g)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if string(a) != string(b) {
		t.Error("repeated projection differs")
	}
}

func TestProjectSymbols(t *testing.T) {
	out, err := Project(orderedGrammar())
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	for _, want := range []string{
		`{"type":"lit","lit":0}`,
		`{"type":"arg","arg":0,"field":0}`,
		`{"type":"param","arg":0,"cases":[0]}`,
	} {
		if !strings.Contains(string(out), want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
}
