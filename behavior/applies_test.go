package behavior_test

import (
	"testing"

	"github.com/fwojciec/unfold"
	"github.com/fwojciec/unfold/behavior"
	"github.com/stretchr/testify/assert"
)

func TestApplies(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		hosts []string
		url   string
		want  bool
	}{
		{"empty hosts match everything", nil, "https://any.example.org/x", true},
		{"exact host", []string{"stats.example.gov"}, "https://stats.example.gov/a", true},
		{"host is case insensitive", []string{"Stats.Example.GOV"}, "https://STATS.example.gov/a", true},
		{"port is ignored", []string{"stats.example.gov"}, "https://stats.example.gov:8443/a", true},
		{"wildcard subdomain", []string{"*.example.gov"}, "https://data.example.gov/", true},
		{"wildcard does not match apex", []string{"*.example.gov"}, "https://example.gov/", false},
		{"alternatives", []string{"{www,data}.example.gov"}, "https://www.example.gov/", true},
		{"second pattern matches", []string{"a.example.gov", "b.example.gov"}, "https://b.example.gov/", true},
		{"no pattern matches", []string{"a.example.gov"}, "https://c.example.gov/", false},
		{"relative url never matches", nil, "/report", false},
		{"malformed url never matches", nil, "://bad", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := unfold.Behavior{Name: "b", Hosts: tt.hosts}

			assert.Equal(t, tt.want, behavior.Applies(b, tt.url))
		})
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	behaviors := []unfold.Behavior{
		{Name: "ons", Hosts: []string{"*.ons.gov.uk"}},
		{Name: "fallback"},
	}

	b, ok := behavior.Select(behaviors, "https://www.ons.gov.uk/economy")
	assert.True(t, ok)
	assert.Equal(t, "ons", b.Name)

	b, ok = behavior.Select(behaviors, "https://stats.example.gov/")
	assert.True(t, ok)
	assert.Equal(t, "fallback", b.Name)

	_, ok = behavior.Select(behaviors[:1], "https://stats.example.gov/")
	assert.False(t, ok)
}

func TestDefaultBehaviors(t *testing.T) {
	t.Parallel()

	behaviors := behavior.DefaultBehaviors()

	assert.Len(t, behaviors, 1)
	assert.NoError(t, behaviors[0].Validate())

	var names []string
	for _, s := range behaviors[0].Steps {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{
		behavior.StepConsent,
		behavior.StepBanner,
		behavior.StepSurvey,
		behavior.StepFilters,
		behavior.StepPagination,
		behavior.StepLoadMore,
		behavior.StepChartMenus,
	}, names)
}
