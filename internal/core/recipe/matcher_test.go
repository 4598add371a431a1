package recipe

import (
	"fmt"
	"testing"

	"recipe-finder/internal/core/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recipeWith(name string, ingredients ...string) Recipe {
	return Recipe{Name: name, Ingredients: ingredients}
}

func names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Recipe.Name
	}
	return out
}

func TestMatch_EmptySelectionPassesThrough(t *testing.T) {
	recipes := []Recipe{
		recipeWith("A", "rice"),
		recipeWith("B"),
		recipeWith("C", "garlic"),
	}

	got := NewMatcher(4).Match(recipes, nil, catalog.New())

	assert.Equal(t, recipes, Recipes(got))
	for _, m := range got {
		assert.False(t, m.Backfilled)
	}
}

func TestMatch_BidirectionalSubstring(t *testing.T) {
	recipes := []Recipe{recipeWith("Salad", "2 ripe tomatoes", "onion")}

	got := NewMatcher(0).Match(recipes, []string{"tomato"}, catalog.New())

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, []bool{true, false}, got[0].Highlights)
}

func TestMatch_SelectionContainsIngredient(t *testing.T) {
	c := catalog.New()
	id := c.Register("Red Onions")
	recipes := []Recipe{recipeWith("Pickle", "onions")}

	got := NewMatcher(0).Match(recipes, []string{id}, c)

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Count)
}

func TestMatch_SortsByCountStable(t *testing.T) {
	recipes := []Recipe{
		recipeWith("One", "rice"),
		recipeWith("Two", "rice", "garlic"),
		recipeWith("None", "sugar"),
		recipeWith("OneAgain", "Garlic cloves"),
		recipeWith("Three", "rice", "garlic", "onions"),
	}

	got := NewMatcher(0).Match(recipes, []string{"rice", "garlic", "onions"}, catalog.New())

	assert.Equal(t, []string{"Three", "Two", "One", "OneAgain"}, names(got))
	assert.Equal(t, []int{3, 2, 1, 1}, []int{got[0].Count, got[1].Count, got[2].Count, got[3].Count})
}

func TestMatch_BackfillsToMinimum(t *testing.T) {
	recipes := make([]Recipe, 0, 10)
	for i := 0; i < 10; i++ {
		recipes = append(recipes, recipeWith(fmt.Sprintf("R%d", i), "sugar"))
	}
	recipes[6] = recipeWith("Match", "spinach leaves")

	got := NewMatcher(4).Match(recipes, []string{"spinach"}, catalog.New())

	require.GreaterOrEqual(t, len(got), 4)
	assert.Equal(t, "Match", got[0].Recipe.Name)
	assert.False(t, got[0].Backfilled)
	assert.Equal(t, []string{"Match", "R0", "R1", "R2"}, names(got))
	for _, m := range got[1:] {
		assert.True(t, m.Backfilled)
		assert.Equal(t, 0, m.Count)
	}
}

func TestMatch_BackfillDisabled(t *testing.T) {
	recipes := []Recipe{recipeWith("A", "sugar"), recipeWith("B", "rice")}

	got := NewMatcher(0).Match(recipes, []string{"rice"}, catalog.New())

	assert.Equal(t, []string{"B"}, names(got))
}

func TestMatch_BlankIngredientsNeverMatch(t *testing.T) {
	recipes := []Recipe{recipeWith("Blank", "", "  ")}

	got := NewMatcher(0).Match(recipes, []string{"rice"}, catalog.New())

	assert.Empty(t, got)
}

func TestMatch_EndToEndTomatoOnion(t *testing.T) {
	c := catalog.New()
	env, err := ParseEnvelope([]byte(`{"recipes":[
		{"name":"Biryani","ingredients":"rice, chicken"},
		{"name":"Curry","ingredients":"tomato, onion, garlic"}
	]}`))
	require.NoError(t, err)
	selected := []string{"tomatoes", "onions"}

	withBackfill := NewMatcher(4).Match(env.Recipes(), selected, c)
	assert.Equal(t, []string{"Curry", "Biryani"}, names(withBackfill))
	assert.Equal(t, 2, withBackfill[0].Count)
	assert.True(t, withBackfill[1].Backfilled)

	strict := NewMatcher(0).Match(env.Recipes(), selected, c)
	assert.Equal(t, []string{"Curry"}, names(strict))
}
