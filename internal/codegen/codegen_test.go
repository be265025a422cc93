package codegen

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efficientmanim/core/internal/catalog"
	"github.com/efficientmanim/core/internal/graph"
	"github.com/efficientmanim/core/internal/models"
)

func TestGenerate(t *testing.T) {
	t.Run("empty graph is a complete unit", func(t *testing.T) {
		g := graph.New(catalog.Discover())

		code := Generate(g)

		expected := "from manim import *\n" +
			"\n" +
			"class Output(Scene):\n" +
			"    def construct(self):\n" +
			"        pass\n"
		assert.Equal(t, expected, code)
	})

	t.Run("radius set and color cleared emits only radius", func(t *testing.T) {
		g := graph.New(catalog.Discover())
		node, err := g.CreateNode("Circle", models.KindElement)
		require.NoError(t, err)
		require.NoError(t, g.SetProperty(node.ID, "radius", models.IntValue(2)))
		require.NoError(t, g.SetProperty(node.ID, "color", models.NullValue()))

		code := Generate(g)

		assert.Contains(t, code, "        Circle_1 = Circle(radius=2)\n")
		assert.Contains(t, code, "        self.add(Circle_1)\n")
		assert.NotContains(t, code, "pass")

		require.NoError(t, g.SetProperty(node.ID, "color", models.MustColor("#58c4dd")))

		code = Generate(g)
		assert.Contains(t, code, "Circle_1 = Circle(radius=2, color=ManimColor('#58C4DD'))")
	})

	t.Run("nodes are emitted in insertion order", func(t *testing.T) {
		g := graph.New(catalog.Discover())
		g.CreateNode("Square", models.KindElement)
		g.CreateNode("Circle", models.KindElement)
		g.CreateNode("Square", models.KindElement)

		code := Generate(g)

		sq1 := strings.Index(code, "Square_1 = ")
		c1 := strings.Index(code, "Circle_1 = ")
		sq2 := strings.Index(code, "Square_2 = ")
		require.True(t, sq1 >= 0 && c1 >= 0 && sq2 >= 0)
		assert.Less(t, sq1, c1)
		assert.Less(t, c1, sq2)
	})

	t.Run("deleted nodes disappear", func(t *testing.T) {
		g := graph.New(catalog.Discover())
		a, _ := g.CreateNode("Square", models.KindElement)
		g.CreateNode("Dot", models.KindElement)
		require.NoError(t, g.DeleteNode(a.ID))

		code := Generate(g)

		assert.NotContains(t, code, "Square_1")
		assert.Contains(t, code, "Dot_1 = Dot(point=ORIGIN, radius=0.08, stroke_width=0, fill_opacity=1.0, color=ManimColor('#FFFFFF'))")
	})

	t.Run("class without parameters", func(t *testing.T) {
		g := graph.New(catalog.Discover())
		g.CreateNode("Triangle", models.KindElement)

		assert.Contains(t, Generate(g), "Triangle_1 = Triangle()\n")
	})

	t.Run("deterministic", func(t *testing.T) {
		g := graph.New(catalog.Discover())
		for _, class := range []string{"Text", "Circle", "Axes", "Star", "Rectangle"} {
			_, err := g.CreateNode(class, models.KindElement)
			require.NoError(t, err)
		}

		first := Generate(g)
		for range 20 {
			assert.Equal(t, first, Generate(g))
		}
	})
}

func TestArguments(t *testing.T) {
	newNode := func(pairs ...any) *models.Node {
		props := models.NewPropertySet()
		for i := 0; i < len(pairs); i += 2 {
			props.Set(pairs[i].(string), pairs[i+1].(models.Value))
		}
		return &models.Node{Name: "X_1", Class: "X", Props: props}
	}

	t.Run("skips null", func(t *testing.T) {
		n := newNode("a", models.NullValue(), "b", models.IntValue(1))

		assert.Equal(t, []string{"b=1"}, Arguments(n))
	})

	t.Run("skips blank strings", func(t *testing.T) {
		n := newNode("text", models.StringValue("   "), "font", models.StringValue(""), "slant", models.StringValue("ITALIC"))

		assert.Equal(t, []string{"slant='ITALIC'"}, Arguments(n))
	})

	t.Run("null color-like values are skipped too", func(t *testing.T) {
		n := newNode("fill_color", models.NullValue())

		assert.Empty(t, Arguments(n))
	})

	t.Run("keeps property order", func(t *testing.T) {
		n := newNode("z", models.IntValue(1), "a", models.BoolValue(false), "m", models.FloatValue(0.5))

		assert.Equal(t, []string{"z=1", "a=False", "m=0.5"}, Arguments(n))
	})
}

func TestLiteral(t *testing.T) {
	testCases := []struct {
		value    models.Value
		expected string
	}{
		{models.BoolValue(true), "True"},
		{models.BoolValue(false), "False"},
		{models.IntValue(-3), "-3"},
		{models.FloatValue(2), "2.0"},
		{models.FloatValue(0.25), "0.25"},
		{models.StringValue("hi"), "'hi'"},
		{models.StringValue("it's"), `"it's"`},
		{models.StringValue(`say "it's"`), `'say "it\'s"'`},
		{models.StringValue("a\\b\nc"), `'a\\b\nc'`},
		{models.StringValue("tab\there"), `'tab\there'`},
		{models.StringValue("bell\a"), `'bell\x07'`},
		{models.StringValue("héllo"), "'héllo'"},
		{models.MustColor("#fff"), "ManimColor('#FFFFFF')"},
		{models.LiteralValue("UP * 2"), "UP * 2"},
		{models.NullValue(), "None"},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s/%s", tc.value.Kind(), tc.expected), func(t *testing.T) {
			assert.Equal(t, tc.expected, Literal(tc.value))
		})
	}
}
