package behavior

import (
	"time"

	"github.com/fwojciec/unfold"
)

// Default step names, in execution order.
const (
	StepConsent    = "consent"
	StepBanner     = "banner"
	StepSurvey     = "survey"
	StepFilters    = "filters"
	StepPagination = "pagination"
	StepLoadMore   = "load-more"
	StepChartMenus = "chart-menus"
)

// DefaultBehavior is the name of the built-in behavior.
const DefaultBehavior = "default"

// DefaultSteps returns the built-in step sequence: dismiss the consent
// dialog, the secondary banner and the survey prompt, open every dynamic
// filter, walk pagination, exhaust "load more", then open chart menus.
func DefaultSteps() []unfold.Step {
	return []unfold.Step{
		{
			Name: StepConsent,
			Selectors: []string{
				"#onetrust-accept-btn-handler",
				"#ccc-recommended-settings",
				"button[data-cookie-accept]",
				".cookie-banner button.accept",
			},
			Kind:          unfold.KindOneShot,
			WaitTimeout:   5 * time.Second,
			ClickDelay:    time.Second,
			MaxIterations: 1,
		},
		{
			Name: StepBanner,
			Selectors: []string{
				".govuk-cookie-banner__content + .govuk-button-group button",
				".cookie-banner__close",
				"button[aria-label='Close banner']",
			},
			Kind:          unfold.KindOneShot,
			WaitTimeout:   3 * time.Second,
			ClickDelay:    500 * time.Millisecond,
			MaxIterations: 1,
		},
		{
			Name: StepSurvey,
			Selectors: []string{
				"#survey-close",
				".survey-modal .close",
				"button[aria-label='Close survey']",
				"[data-survey-dismiss]",
			},
			Kind:          unfold.KindOneShot,
			WaitTimeout:   3 * time.Second,
			ClickDelay:    500 * time.Millisecond,
			MaxIterations: 1,
		},
		{
			Name: StepFilters,
			Selectors: []string{
				".dynamic-filter button",
				".filter-panel button",
				".filters__panel button",
			},
			Kind:          unfold.KindOneShot,
			WaitTimeout:   3 * time.Second,
			ClickDelay:    300 * time.Millisecond,
			MaxIterations: 50,
		},
		{
			Name: StepPagination,
			Selectors: []string{
				"nav[aria-label='Pagination'] a",
				".pagination a",
				".pager__item a",
			},
			Kind:          unfold.KindRepeatEachUntilStable,
			WaitTimeout:   3 * time.Second,
			ClickDelay:    2 * time.Second,
			SettleDelay:   2 * time.Second,
			MaxIterations: 100,
		},
		{
			Name: StepLoadMore,
			Selectors: []string{
				".load-more",
				"button.show-more",
				"[data-load-more]",
			},
			Kind:          unfold.KindRepeatUntilGone,
			WaitTimeout:   5 * time.Second,
			ClickDelay:    2 * time.Second,
			SettleDelay:   time.Second,
			MaxIterations: 250,
		},
		{
			Name: StepChartMenus,
			Selectors: []string{
				".highcharts-contextbutton",
				".chart-menu button",
				"button[aria-label='View chart menu']",
			},
			Kind:          unfold.KindRepeatEachUntilStable,
			WaitTimeout:   3 * time.Second,
			ClickDelay:    300 * time.Millisecond,
			SettleDelay:   500 * time.Millisecond,
			MaxIterations: 20,
		},
	}
}

// DefaultBehaviors returns the built-in behavior, which applies to every host.
func DefaultBehaviors() []unfold.Behavior {
	return []unfold.Behavior{{Name: DefaultBehavior, Steps: DefaultSteps()}}
}
