package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoClassModel builds a small view: Main.run calls Helper.help, Helper
// extends Base and overrides help.
func twoClassModel(t *testing.T) *Model {
	t.Helper()

	model, err := Build([]ClassDef{
		{
			Fqn: "com.example.Main",
			Methods: []MethodDef{
				{
					Name:       "run",
					ReturnType: "void",
					Stmts: []StmtDef{
						{FirstLine: 10, Succs: []int{1}},
						{FirstLine: 11, LastLine: 12, Succs: []int{2}, Calls: []string{"com.example.Base.help(int)void"}},
						{FirstLine: 13},
					},
				},
				{
					Name:       "run",
					ReturnType: "void",
					ParamTypes: []string{"int"},
					Stmts:      []StmtDef{{FirstLine: 20}},
				},
			},
		},
		{
			Fqn: "com.example.Base",
			Methods: []MethodDef{
				{Name: "help", ReturnType: "void", ParamTypes: []string{"int"}, Stmts: []StmtDef{{FirstLine: 5}}},
			},
		},
		{
			Fqn:   "com.example.Helper",
			Super: "com.example.Base",
			Methods: []MethodDef{
				{Name: "help", ReturnType: "void", ParamTypes: []string{"int"}, Stmts: []StmtDef{{FirstLine: 30}}},
				{Name: "abstractish", ReturnType: "void"},
			},
		},
	})
	require.NoError(t, err)
	return model
}

func TestBuild_Lookups(t *testing.T) {
	model := twoClassModel(t)

	class, ok := model.Class("com.example.Main")
	require.True(t, ok)
	assert.Len(t, class.Methods(), 2)

	_, ok = model.Class("com.example.Missing")
	assert.False(t, ok)

	method, ok := model.Method(MethodSig{ClassFqn: "com.example.Main", Name: "run", ReturnType: "void"})
	require.True(t, ok)
	assert.True(t, method.HasBody())
	assert.Len(t, method.Stmts(), 3)

	classes := model.Classes()
	require.Len(t, classes, 3)
	assert.Equal(t, "com.example.Main", classes[0].Fqn)
}

func TestBuild_StmtWiring(t *testing.T) {
	model := twoClassModel(t)

	method, ok := model.Method(MethodSig{ClassFqn: "com.example.Main", Name: "run", ReturnType: "void"})
	require.True(t, ok)

	stmts := method.Stmts()
	assert.Same(t, stmts[1], stmts[0].Succs()[0])
	assert.Same(t, stmts[2], stmts[1].Succs()[0])
	assert.Empty(t, stmts[2].Succs())

	assert.False(t, stmts[0].IsCall())
	assert.True(t, stmts[1].IsCall())
	require.Len(t, stmts[1].CallTargets(), 1)
	assert.Equal(t, "com.example.Base.help(int)void", stmts[1].CallTargets()[0].Key())

	assert.Same(t, method, stmts[0].Owner())

	entries := method.EntryStmts()
	require.Len(t, entries, 1)
	assert.Same(t, stmts[0], entries[0])
}

func TestBuild_BodylessMethod(t *testing.T) {
	model := twoClassModel(t)

	method, ok := model.Method(MethodSig{ClassFqn: "com.example.Helper", Name: "abstractish", ReturnType: "void"})
	require.True(t, ok)
	assert.False(t, method.HasBody())
	assert.Nil(t, method.EntryStmts())
}

func TestBuild_Errors(t *testing.T) {
	t.Run("missing fqn", func(t *testing.T) {
		_, err := Build([]ClassDef{{}})
		assert.Error(t, err)
	})

	t.Run("duplicate class", func(t *testing.T) {
		_, err := Build([]ClassDef{{Fqn: "A"}, {Fqn: "A"}})
		assert.Error(t, err)
	})

	t.Run("successor out of range", func(t *testing.T) {
		_, err := Build([]ClassDef{{
			Fqn: "A",
			Methods: []MethodDef{
				{Name: "m", ReturnType: "void", Stmts: []StmtDef{{Succs: []int{5}}}},
			},
		}})
		assert.Error(t, err)
	})

	t.Run("bad call signature", func(t *testing.T) {
		_, err := Build([]ClassDef{{
			Fqn: "A",
			Methods: []MethodDef{
				{Name: "m", ReturnType: "void", Stmts: []StmtDef{{Calls: []string{"not a signature"}}}},
			},
		}})
		assert.Error(t, err)
	})
}

func TestStmtsAtLine(t *testing.T) {
	model := twoClassModel(t)

	// Line 11 and 12 are the same multi-line statement.
	for _, line := range []int{11, 12} {
		stmts := model.StmtsAtLine("com.example.Main", line)
		require.Len(t, stmts, 1, "line %d", line)
		assert.Equal(t, 11, stmts[0].FirstLine)
	}

	assert.Empty(t, model.StmtsAtLine("com.example.Main", 99))
	assert.Empty(t, model.StmtsAtLine("com.example.Missing", 10))
}

func TestStmtsAtLine_NoPositionInfo(t *testing.T) {
	model, err := Build([]ClassDef{{
		Fqn: "A",
		Methods: []MethodDef{
			{Name: "m", ReturnType: "void", Stmts: []StmtDef{{}}},
		},
	}})
	require.NoError(t, err)

	// A statement without position info never matches any line.
	assert.Empty(t, model.StmtsAtLine("A", 0))
	assert.Empty(t, model.StmtsAtLine("A", 1))
}
