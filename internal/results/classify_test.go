package results

import (
	"strings"
	"testing"

	"github.com/rivo/uniseg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakti/wakti-nlp/internal/types"
)

func TestClassify_WinnerFromTitle(t *testing.T) {
	result := Classify([]types.SearchSnippet{
		{Title: "Lakers beat Celtics 102-98, full recap", URL: "https://www.espn.com/nba/recap"},
	})

	require.Equal(t, types.ResultKindMatches, result.Kind)
	require.Len(t, result.Rows, 1)

	row := result.Rows[0]
	assert.Equal(t, "Lakers", row.Winner)
	assert.Equal(t, "Celtics", row.Loser)
	assert.Equal(t, "102-98", row.Score)
	assert.Equal(t, "espn.com", row.SourceHost)
	assert.Empty(t, result.GenericRows)
}

func TestClassify_HigherScoreOnSecondTeamWins(t *testing.T) {
	result := Classify([]types.SearchSnippet{
		{Title: "Arsenal vs Chelsea 1-3", Content: "Chelsea ran out comfortable winners. Palmer scored twice."},
	})

	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Chelsea", result.Rows[0].Winner)
	assert.Equal(t, "Arsenal", result.Rows[0].Loser)
	assert.Equal(t, "1-3", result.Rows[0].Score)
}

func TestClassify_ScoreSeparators(t *testing.T) {
	tests := []struct {
		name  string
		title string
		score string
	}{
		{name: "hyphen", title: "Real Madrid v Barcelona 2-1", score: "2-1"},
		{name: "en dash", title: "Real Madrid v Barcelona 2 – 1", score: "2-1"},
		{name: "colon", title: "Real Madrid v Barcelona 2:1", score: "2-1"},
		{name: "x", title: "Real Madrid v Barcelona 2x1", score: "2-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Classify([]types.SearchSnippet{{Title: tt.title}})
			require.Equal(t, types.ResultKindMatches, result.Kind)
			assert.Equal(t, tt.score, result.Rows[0].Score)
			assert.Equal(t, "Real Madrid", result.Rows[0].Winner)
			assert.Equal(t, "Barcelona", result.Rows[0].Loser)
		})
	}
}

func TestClassify_ScoreAndTeamsFromContent(t *testing.T) {
	result := Classify([]types.SearchSnippet{
		{
			Title:   "Match report",
			URL:     "https://bbc.co.uk/sport/football/1",
			Content: "Liverpool defeat Everton 4-0 at Anfield. Salah opened the scoring early.",
		},
	})

	require.Equal(t, types.ResultKindMatches, result.Kind)
	row := result.Rows[0]
	assert.Equal(t, "Liverpool", row.Winner)
	assert.Equal(t, "Everton", row.Loser)
	assert.Equal(t, "4-0", row.Score)
	assert.Equal(t, "bbc.co.uk", row.SourceHost)
	assert.Equal(t, "Liverpool defeat Everton 4-0 at Anfield. Salah opened the scoring early.", row.Highlights)
}

func TestClassify_ScoreWithoutSeparatorIsExcluded(t *testing.T) {
	snippets := []types.SearchSnippet{
		{Title: "Final score 3-1 tonight", URL: "https://example.com/a"},
		{Title: "Lakers beat Celtics 102-98", URL: "https://example.com/b"},
	}

	result := Classify(snippets)

	require.Equal(t, types.ResultKindMatches, result.Kind)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Lakers", result.Rows[0].Winner)
}

func TestClassify_GenericFallbackPreservesOrder(t *testing.T) {
	snippets := []types.SearchSnippet{
		{Title: "Weather in Doha", URL: "https://www.weather.com/doha"},
		{Title: "", URL: "not a url"},
		{Title: "Final score 3-1", URL: "http://[::1"},
	}

	result := Classify(snippets)

	require.Equal(t, types.ResultKindGeneric, result.Kind)
	require.Len(t, result.GenericRows, len(snippets))
	assert.Empty(t, result.Rows)

	assert.Equal(t, types.GenericRow{Title: "Weather in Doha", Source: "weather.com"}, result.GenericRows[0])
	assert.Equal(t, types.GenericRow{Title: Placeholder, Source: ""}, result.GenericRows[1])
	assert.Equal(t, types.GenericRow{Title: "Final score 3-1", Source: ""}, result.GenericRows[2])
}

func TestClassify_EmptyInput(t *testing.T) {
	assert.NotPanics(t, func() {
		result := Classify(nil)
		assert.Equal(t, types.ResultKindGeneric, result.Kind)
		assert.Equal(t, 0, result.Len())
	})
}

func TestClassify_Idempotent(t *testing.T) {
	snippets := []types.SearchSnippet{
		{Title: "Lakers beat Celtics 102-98, full recap", Content: "LeBron led the way. The Lakers closed strong. More to come."},
		{Title: "Weather in Doha"},
	}

	first := Classify(snippets)
	second := Classify(snippets)

	assert.Equal(t, first, second)
}

func TestClassify_NeverPanicsOnOddInput(t *testing.T) {
	inputs := []types.SearchSnippet{
		{},
		{Title: "   ", Content: "\n\n"},
		{Title: "vs", Content: "@"},
		{Title: "1-2-3-4", URL: "%%%"},
		{Title: "(Lakers) beat [Celtics] 1-0"},
		{Title: strings.Repeat("A vs B 1-0 ", 200)},
	}

	assert.NotPanics(t, func() {
		result := Classify(inputs)
		for _, row := range result.Rows {
			assert.Regexp(t, `^\d+-\d+$`, row.Score)
			assert.NotEmpty(t, row.Winner)
			assert.NotEmpty(t, row.Loser)
		}
		if result.Kind == types.ResultKindGeneric {
			assert.Len(t, result.GenericRows, len(inputs))
		}
	})
}

func TestParseSnippet_CleansTeamNames(t *testing.T) {
	parsed, ok := ParseSnippet(types.SearchSnippet{
		Title: "Highlights Lakers (NBA) beat the Celtics [video] 110-104",
	})

	require.True(t, ok)
	assert.Equal(t, "Lakers", parsed.Row.Winner)
	assert.Equal(t, "Celtics", parsed.Row.Loser)
	assert.Equal(t, "110-104", parsed.Row.Score)
	assert.True(t, parsed.ScoreInTitle)
}

func TestParseSnippet_LevelScoreUsesWording(t *testing.T) {
	parsed, ok := ParseSnippet(types.SearchSnippet{Title: "Inter def. Milan 1-1 on penalties"})
	require.True(t, ok)
	assert.Equal(t, "Inter", parsed.Row.Winner)
	assert.Equal(t, "Milan", parsed.Row.Loser)
	assert.Equal(t, DecidedByCue, parsed.DecidedBy)

	parsed, ok = ParseSnippet(types.SearchSnippet{Title: "Inter vs Milan 1-1"})
	require.True(t, ok)
	assert.Equal(t, "Inter", parsed.Row.Winner)
	assert.Equal(t, DecidedByOrder, parsed.DecidedBy)
}

func TestParseSnippet_StripsBoilerplate(t *testing.T) {
	parsed, ok := ParseSnippet(types.SearchSnippet{
		Title:   "We use cookies. Accept all cookies. Bulls over Knicks 99-90",
		Content: "Advertisement\nThe Bulls pulled away late.\nCookie policy",
	})

	require.True(t, ok)
	assert.Equal(t, "Bulls", parsed.Row.Winner)
	assert.Equal(t, "Knicks", parsed.Row.Loser)
	assert.Equal(t, "The Bulls pulled away late.", parsed.Row.Highlights)
}

func TestHighlights_TruncatedWithEllipsis(t *testing.T) {
	long := strings.Repeat("word ", 60) + "end."
	parsed, ok := ParseSnippet(types.SearchSnippet{
		Title:   "Lakers beat Celtics 102-98",
		Content: long,
	})

	require.True(t, ok)
	h := parsed.Row.Highlights
	assert.True(t, strings.HasSuffix(h, "…"))
	assert.LessOrEqual(t, uniseg.GraphemeClusterCount(h), MaxHighlightLength+1)
}

func TestHighlights_FirstTwoSentences(t *testing.T) {
	got := buildHighlights("First one. Second **bold** one! Third one? Fourth.")
	assert.Equal(t, "First one. Second bold one!", got)
}

func TestHighlights_EmptyUsesPlaceholder(t *testing.T) {
	assert.Equal(t, Placeholder, buildHighlights(""))
	assert.Equal(t, Placeholder, buildHighlights("** __ ~~"))
}

func TestSplitSentences_DecimalsStayTogether(t *testing.T) {
	got := splitSentences("He shot 45.5 percent. Good night")
	assert.Equal(t, []string{"He shot 45.5 percent.", "Good night"}, got)
}

func TestSourceHost(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "https://www.espn.com/nba", want: "espn.com"},
		{in: "https://WWW.BBC.co.uk/sport", want: "bbc.co.uk"},
		{in: "http://sports.yahoo.com:8080/x", want: "sports.yahoo.com"},
		{in: "", want: ""},
		{in: "not a url", want: ""},
		{in: "http://[::1", want: ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SourceHost(tt.in), "input %q", tt.in)
	}
}

func TestColumns(t *testing.T) {
	assert.Len(t, Columns(types.ResultKindMatches), 5)
	assert.Equal(t, []string{"Title", "Source"}, Columns(types.ResultKindGeneric))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "Lakers win big", CleanText("  Lakers\n\nwin   ADVERTISEMENT big \r\n"))
	assert.Empty(t, CleanText(""))
	assert.Equal(t, "café", CleanText("café"))
}

func TestParseSnippet_ScoreBetweenTeams(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		winner string
		loser  string
		score  string
	}{
		{name: "score then over", title: "Warriors 120-110 over Suns", winner: "Warriors", loser: "Suns", score: "120-110"},
		{name: "second score over", title: "Lakers 102-98 over Celtics", winner: "Lakers", loser: "Celtics", score: "102-98"},
		{name: "score then v", title: "Arsenal 3-1 v Chelsea", winner: "Arsenal", loser: "Chelsea", score: "3-1"},
		{name: "score then vs with lower first", title: "Arsenal 1-3 vs Chelsea", winner: "Chelsea", loser: "Arsenal", score: "1-3"},
		{name: "score then comma tail", title: "Warriors 120-110 over Suns, full recap", winner: "Warriors", loser: "Suns", score: "120-110"},
		{name: "digit led team name", title: "76ers 99-97 over Nets", winner: "76ers", loser: "Nets", score: "99-97"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ParseSnippet(types.SearchSnippet{Title: tt.title})
			require.True(t, ok)
			assert.Equal(t, tt.winner, parsed.Row.Winner)
			assert.Equal(t, tt.loser, parsed.Row.Loser)
			assert.Equal(t, tt.score, parsed.Row.Score)
		})
	}
}

func TestParseSnippet_ScoreCommaWithoutSeparatorIsExcluded(t *testing.T) {
	_, ok := ParseSnippet(types.SearchSnippet{Title: "Arsenal 3-1, Chelsea"})
	assert.False(t, ok)
}

func TestParseSnippet_NumericTeamsNeverEmitted(t *testing.T) {
	titles := []string{
		"Warriors 120-110 over Suns",
		"Arsenal 3-1 v Chelsea",
		"120 over 110 3-1",
		"2024 season: 3-1 vs 2-0",
		"Lakers 102-98 over Celtics 99-90",
	}

	result := Classify(func() []types.SearchSnippet {
		snippets := make([]types.SearchSnippet, 0, len(titles))
		for _, title := range titles {
			snippets = append(snippets, types.SearchSnippet{Title: title})
		}
		return snippets
	}())

	for _, row := range result.Rows {
		assert.NotRegexp(t, `^\d+$`, row.Winner)
		assert.NotRegexp(t, `^\d+$`, row.Loser)
	}
}

func TestParseSnippet_LowercaseAndTaggedTitles(t *testing.T) {
	tests := []struct {
		name   string
		title  string
		winner string
		loser  string
	}{
		{name: "all lowercase", title: "lakers beat celtics 102-98", winner: "lakers", loser: "celtics"},
		{name: "shouted tag", title: "BREAKING Lakers beat Celtics 102-98", winner: "Lakers", loser: "Celtics"},
		{name: "unknown shouted tag", title: "UPDATE Lakers beat Celtics 102-98", winner: "Lakers", loser: "Celtics"},
		{name: "category prefix", title: "NBA: Lakers beat Celtics 102-98", winner: "Lakers", loser: "Celtics"},
		{name: "acronym kept", title: "PSG beat Lyon 3-0", winner: "PSG", loser: "Lyon"},
		{name: "stop word ends side", title: "LeBron starred as the Lakers beat the Celtics 102-98 at home", winner: "Lakers", loser: "Celtics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, ok := ParseSnippet(types.SearchSnippet{Title: tt.title})
			require.True(t, ok)
			assert.Equal(t, tt.winner, parsed.Row.Winner)
			assert.Equal(t, tt.loser, parsed.Row.Loser)
		})
	}
}
