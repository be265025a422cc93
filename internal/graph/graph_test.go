package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efficientmanim/core/internal/catalog"
	"github.com/efficientmanim/core/internal/models"
)

func newTestGraph() *Graph {
	g := New(catalog.Discover())
	seq := 0
	g.newID = func() string {
		seq++
		return fmt.Sprintf("node-%d", seq)
	}
	return g
}

func TestCreateNode(t *testing.T) {
	t.Run("names follow the class counter", func(t *testing.T) {
		g := newTestGraph()

		c1, err := g.CreateNode("Circle", models.KindElement)
		require.NoError(t, err)
		c2, err := g.CreateNode("Circle", models.KindElement)
		require.NoError(t, err)
		s1, err := g.CreateNode("Square", models.KindElement)
		require.NoError(t, err)

		assert.Equal(t, "Circle_1", c1.Name)
		assert.Equal(t, "Circle_2", c2.Name)
		assert.Equal(t, "Square_1", s1.Name)
		assert.Equal(t, map[string]int{"Circle": 2, "Square": 1}, g.Counters())
	})

	t.Run("properties are seeded from catalog defaults in order", func(t *testing.T) {
		g := newTestGraph()

		node, err := g.CreateNode("Circle", models.KindElement)
		require.NoError(t, err)

		assert.Equal(t, []string{"radius", "color"}, node.Props.Keys())
		color, _ := node.Props.Get("color")
		assert.Equal(t, "#FC6255", color.Hex())
	})

	t.Run("nodes do not share property sets", func(t *testing.T) {
		g := newTestGraph()

		a, _ := g.CreateNode("Circle", models.KindElement)
		b, _ := g.CreateNode("Circle", models.KindElement)
		require.NoError(t, g.SetProperty(a.ID, "radius", models.IntValue(3)))

		radius, _ := b.Props.Get("radius")
		assert.True(t, radius.IsNull())
	})

	t.Run("ids are unique", func(t *testing.T) {
		g := New(catalog.Discover())

		a, _ := g.CreateNode("Dot", models.KindElement)
		b, _ := g.CreateNode("Dot", models.KindElement)

		assert.NotEmpty(t, a.ID)
		assert.NotEqual(t, a.ID, b.ID)
	})

	t.Run("unknown class fails", func(t *testing.T) {
		g := newTestGraph()

		_, err := g.CreateNode("Hypercube", models.KindElement)

		assert.ErrorIs(t, err, ErrUnknownClass)
		assert.Zero(t, g.Len())
		assert.Empty(t, g.Counters())
	})

	t.Run("kind mismatch is an unknown class", func(t *testing.T) {
		g := newTestGraph()

		_, err := g.CreateNode("Circle", models.KindAnimation)

		assert.ErrorIs(t, err, ErrUnknownClass)
	})

	t.Run("animations can be placed", func(t *testing.T) {
		g := newTestGraph()

		node, err := g.CreateNode("FadeIn", models.KindAnimation)

		require.NoError(t, err)
		assert.Equal(t, "FadeIn_1", node.Name)
		assert.Equal(t, models.KindAnimation, node.Kind)
	})
}

func TestSetProperty(t *testing.T) {
	g := newTestGraph()
	node, err := g.CreateNode("Circle", models.KindElement)
	require.NoError(t, err)

	t.Run("replaces a value", func(t *testing.T) {
		require.NoError(t, g.SetProperty(node.ID, "radius", models.FloatValue(1.5)))

		v, _ := node.Props.Get("radius")
		assert.Equal(t, models.FloatValue(1.5), v)
	})

	t.Run("order is unchanged by edits", func(t *testing.T) {
		require.NoError(t, g.SetProperty(node.ID, "color", models.NullValue()))
		require.NoError(t, g.SetProperty(node.ID, "radius", models.IntValue(2)))

		assert.Equal(t, []string{"radius", "color"}, node.Props.Keys())
	})

	t.Run("missing node", func(t *testing.T) {
		err := g.SetProperty("nope", "radius", models.IntValue(1))

		assert.ErrorIs(t, err, ErrNodeNotFound)
	})

	t.Run("unknown property", func(t *testing.T) {
		err := g.SetProperty(node.ID, "side_length", models.IntValue(1))

		assert.ErrorIs(t, err, ErrUnknownProperty)
		assert.False(t, node.Props.Has("side_length"))
	})
}

func TestDeleteNode(t *testing.T) {
	t.Run("removes and preserves order of the rest", func(t *testing.T) {
		g := newTestGraph()
		a, _ := g.CreateNode("Circle", models.KindElement)
		b, _ := g.CreateNode("Square", models.KindElement)
		c, _ := g.CreateNode("Dot", models.KindElement)

		require.NoError(t, g.DeleteNode(b.ID))

		assert.Equal(t, []string{a.ID, c.ID}, g.IDs())
		_, ok := g.Node(b.ID)
		assert.False(t, ok)
	})

	t.Run("missing node", func(t *testing.T) {
		g := newTestGraph()

		assert.ErrorIs(t, g.DeleteNode("nope"), ErrNodeNotFound)
	})

	t.Run("display names are never reused", func(t *testing.T) {
		g := newTestGraph()
		issued := map[string]bool{}

		var nodes []*models.Node
		for range 4 {
			n, err := g.CreateNode("Square", models.KindElement)
			require.NoError(t, err)
			issued[n.Name] = true
			nodes = append(nodes, n)
		}
		require.NoError(t, g.DeleteNode(nodes[3].ID))
		require.NoError(t, g.DeleteNode(nodes[1].ID))

		next, err := g.CreateNode("Square", models.KindElement)
		require.NoError(t, err)

		assert.False(t, issued[next.Name])
		assert.Equal(t, "Square_5", next.Name)
	})
}

func TestClearAndReset(t *testing.T) {
	t.Run("clear keeps counters", func(t *testing.T) {
		g := newTestGraph()
		g.CreateNode("Circle", models.KindElement)
		g.CreateNode("Circle", models.KindElement)

		g.Clear()
		node, err := g.CreateNode("Circle", models.KindElement)

		require.NoError(t, err)
		assert.Equal(t, 1, g.Len())
		assert.Equal(t, "Circle_3", node.Name)
	})

	t.Run("reset drops counters", func(t *testing.T) {
		g := newTestGraph()
		g.CreateNode("Circle", models.KindElement)

		g.Reset()
		node, err := g.CreateNode("Circle", models.KindElement)

		require.NoError(t, err)
		assert.Equal(t, "Circle_1", node.Name)
	})
}

func TestMoveNode(t *testing.T) {
	g := newTestGraph()
	node, _ := g.CreateNode("Circle", models.KindElement)

	require.NoError(t, g.MoveNode(node.ID, models.Position{120, -40}))
	assert.Equal(t, models.Position{120, -40}, node.Position)

	assert.ErrorIs(t, g.MoveNode("nope", models.Position{}), ErrNodeNotFound)
}

func TestRestore(t *testing.T) {
	t.Run("keeps order and counters", func(t *testing.T) {
		nodes := []*models.Node{
			{ID: "b", Name: "Square_4", Class: "Square", Kind: models.KindElement},
			{ID: "a", Name: "Circle_1", Class: "Circle", Kind: models.KindElement},
		}

		g, err := Restore(catalog.Discover(), nodes, map[string]int{"Square": 4, "Circle": 1})
		require.NoError(t, err)

		assert.Equal(t, []string{"b", "a"}, g.IDs())
		assert.NotNil(t, nodes[0].Props)

		next, err := g.CreateNode("Square", models.KindElement)
		require.NoError(t, err)
		assert.Equal(t, "Square_5", next.Name)
	})

	t.Run("duplicate ids fail", func(t *testing.T) {
		nodes := []*models.Node{
			{ID: "a", Name: "Circle_1", Class: "Circle"},
			{ID: "a", Name: "Circle_2", Class: "Circle"},
		}

		_, err := Restore(catalog.Discover(), nodes, nil)

		assert.ErrorIs(t, err, ErrDuplicateNode)
	})
}

func TestCounterConflicts(t *testing.T) {
	nodes := []*models.Node{
		{ID: "a", Name: "Circle_1", Class: "Circle"},
		{ID: "b", Name: "Circle_3", Class: "Circle"},
		{ID: "c", Name: "Square_2", Class: "Square"},
		{ID: "d", Name: "hero", Class: "Dot"},
		{ID: "e", Name: "Text_x", Class: "Text"},
	}

	t.Run("names above their counter are reported", func(t *testing.T) {
		conflicts := CounterConflicts(nodes, map[string]int{"Circle": 2})

		assert.Equal(t, []string{"Circle_3", "Square_2"}, conflicts)
	})

	t.Run("up to date counters report nothing", func(t *testing.T) {
		conflicts := CounterConflicts(nodes, map[string]int{"Circle": 3, "Square": 2})

		assert.Empty(t, conflicts)
	})

	t.Run("restored graph would reuse a reported name", func(t *testing.T) {
		g, err := Restore(catalog.Discover(), []*models.Node{{ID: "x", Name: "Circle_1", Class: "Circle", Kind: models.KindElement}}, map[string]int{})
		require.NoError(t, err)
		require.Equal(t, []string{"Circle_1"}, CounterConflicts(g.Nodes(), g.Counters()))

		node, err := g.CreateNode("Circle", models.KindElement)
		require.NoError(t, err)
		assert.Equal(t, "Circle_1", node.Name)
	})
}

func TestInspect(t *testing.T) {
	g := newTestGraph()
	node, err := g.CreateNode("Text", models.KindElement)
	require.NoError(t, err)

	fields := Inspect(node)
	byName := map[string]Field{}
	for _, f := range fields {
		byName[f.Name] = f
	}

	t.Run("null color-like fields are listed", func(t *testing.T) {
		f, ok := byName["color"]
		require.True(t, ok)
		assert.Equal(t, FieldColor, f.Type)
		assert.True(t, f.Value.IsNull())
	})

	t.Run("other null fields are hidden", func(t *testing.T) {
		_, ok := byName["text"]
		assert.False(t, ok)
		_, ok = byName["gradient"]
		assert.False(t, ok)
	})

	t.Run("field types follow values", func(t *testing.T) {
		assert.Equal(t, FieldNumber, byName["font_size"].Type)
		assert.Equal(t, FieldBool, byName["should_center"].Type)
		assert.Equal(t, FieldText, byName["slant"].Type)
	})

	t.Run("fields keep parameter order", func(t *testing.T) {
		require.NotEmpty(t, fields)
		assert.Equal(t, "fill_opacity", fields[0].Name)
	})
}

func TestIsColorName(t *testing.T) {
	assert.True(t, IsColorName("color"))
	assert.True(t, IsColorName("fill_color"))
	assert.True(t, IsColorName("STROKE_COLOR"))
	assert.False(t, IsColorName("colors_list"))
	assert.False(t, IsColorName("radius"))
}
