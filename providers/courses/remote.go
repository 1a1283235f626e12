package courses

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/saharlajmi1/recmooc4all/core/turn"
	"github.com/saharlajmi1/recmooc4all/internal/utils"
)

// Remote is a client for the recommender service. The service ranks courses
// against a whole user profile, which the local catalog cannot do.
type Remote struct {
	httpClient *http.Client
	baseURL    string
	profile    Profile
}

// Ensure Remote implements Searcher at compile time.
var _ Searcher = (*Remote)(nil)

// NewRemote returns a client for the recommender at baseURL. The profile is
// sent with every request; per-topic searches override its area of
// interest. A nil httpClient falls back to http.DefaultClient.
func NewRemote(baseURL string, profile Profile, httpClient *http.Client) *Remote {
	return &Remote{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		profile:    profile,
	}
}

// remoteCourse is the wire shape of one recommended course. The service
// returns category and level as stringified lists and the headline as HTML.
type remoteCourse struct {
	Title      string `json:"Title"`
	URL        string `json:"URL"`
	Categories string `json:"category_title"`
	Levels     string `json:"Level"`
	Headline   string `json:"Headline"`
}

type recommendResponse struct {
	RecommendedMoocs []remoteCourse `json:"recommended_moocs"`
}

// Recommend posts the profile to the recommender and returns the ranked
// courses.
func (r *Remote) Recommend(ctx context.Context, profile Profile) ([]turn.Course, error) {
	response, err := utils.DoPostSync[recommendResponse](ctx, r.httpClient, r.baseURL+"/recommend", "", profile)
	if err != nil {
		return nil, fmt.Errorf("recommend request failed: %w", err)
	}

	courses := make([]turn.Course, 0, len(response.RecommendedMoocs))
	for _, course := range response.RecommendedMoocs {
		courses = append(courses, course.toCourse())
	}
	return courses, nil
}

// SearchCourses asks the recommender for courses on a topic by overriding
// the profile's area of interest. The level filter is folded into the
// profile's knowledge level; k trims the ranked response.
func (r *Remote) SearchCourses(ctx context.Context, topic string, k int, level string) ([]turn.Course, error) {
	profile := r.profile
	profile.AreasOfInterest = topic
	if level != "" {
		profile.KnowledgeLevel = level
	}

	courses, err := r.Recommend(ctx, profile)
	if err != nil {
		return nil, err
	}
	if k > 0 && k < len(courses) {
		courses = courses[:k]
	}
	return courses, nil
}

func (c remoteCourse) toCourse() turn.Course {
	description := c.Headline
	if markdown, err := htmltomarkdown.ConvertString(c.Headline); err == nil {
		description = markdown
	}

	return turn.Course{
		Title:       c.Title,
		URL:         c.URL,
		Categories:  parseListString(c.Categories),
		Levels:      parseListString(c.Levels),
		Description: strings.TrimSpace(description),
	}
}

// parseListString decodes the recommender's stringified lists, e.g.
// "['Business', 'IT']" into their elements.
func parseListString(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.Trim(strings.TrimSpace(part), `'"`)
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return items
}
