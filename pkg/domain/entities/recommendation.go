package entities

import (
	"fmt"
	"strings"
)

// Recommendation represents the action suggested for a PLU
type Recommendation string

const (
	Publish     Recommendation = "Publish"
	PublishTemp Recommendation = "Publish - TEMP"
	Unpublish   Recommendation = "Unpublish"
	NoAction    Recommendation = "No Action"
)

// String method for Recommendation enum
func (r Recommendation) String() string {
	return string(r)
}

// RequiresAction reports whether the recommendation asks for a change on the storefront
func (r Recommendation) RequiresAction() bool {
	switch r {
	case Publish, PublishTemp, Unpublish:
		return true
	default:
		return false
	}
}

// RecommendationFilter selects result rows by recommendation
type RecommendationFilter string

const (
	FilterAll    RecommendationFilter = "All"
	FilterAction RecommendationFilter = "Action"
)

// DefaultRecommendationFilter shows only rows that need a change
const DefaultRecommendationFilter = FilterAction

// ParseRecommendationFilter accepts All, Action or any recommendation value, case-insensitively
func ParseRecommendationFilter(s string) (RecommendationFilter, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultRecommendationFilter, nil
	}
	for _, f := range []RecommendationFilter{
		FilterAll, FilterAction,
		RecommendationFilter(Publish), RecommendationFilter(PublishTemp),
		RecommendationFilter(Unpublish), RecommendationFilter(NoAction),
	} {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown recommendation filter %q", s)
}

// Matches reports whether a row with the given recommendation passes the filter
func (f RecommendationFilter) Matches(r Recommendation) bool {
	switch f {
	case FilterAll:
		return true
	case FilterAction:
		return r.RequiresAction()
	default:
		return Recommendation(f) == r
	}
}
