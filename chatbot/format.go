package chatbot

import (
	"fmt"
	"strings"

	"github.com/saharlajmi1/recmooc4all/core/turn"
)

// toneForEmotion maps the detected emotion onto the tone the final answer
// is rewritten in.
var toneForEmotion = map[string]string{
	"confused":   "educational and reassuring",
	"scared":     "soothing and supportive",
	"angry":      "calm and understanding",
	"sad":        "encouraging and positive",
	"frustrated": "clear and motivating",
	"happy":      "enthusiastic and warm",
	"neutral":    "informative and professional",
}

// ToneForEmotion returns the answer tone for an emotion; unknown emotions
// get the neutral tone.
func ToneForEmotion(emotion string) string {
	if tone, ok := toneForEmotion[emotion]; ok {
		return tone
	}
	return toneForEmotion["neutral"]
}

// FormatCoursesList renders a flat recommendation list as the draft answer.
func FormatCoursesList(list []turn.Course, topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are the recommended courses to learn %s:\n\n", topic)

	for i, course := range list {
		fmt.Fprintf(&b, "%d. %s\n", i+1, course.Title)
		fmt.Fprintf(&b, "- category: %s\n", strings.Join(course.Categories, ", "))
		fmt.Fprintf(&b, "- level: %s\n", strings.Join(course.Levels, ", "))
		fmt.Fprintf(&b, "- URL: %s\n", course.URL)
		fmt.Fprintf(&b, "- description: %s\n\n", strings.Join(descriptionKeywords(course.Description), ", "))
	}
	return b.String()
}

// FormatRoadmap renders the aggregated roadmap steps as the draft answer.
func FormatRoadmap(steps []turn.RoadmapStep, goal string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are the steps to learn %s:\n\n", goal)

	for _, step := range steps {
		fmt.Fprintf(&b, "Step %d: %s\n", step.StepIndex, step.Topic)
		b.WriteString("Courses:\n")

		for _, course := range step.Courses {
			fmt.Fprintf(&b, "  - %s\n", course.Title)
			fmt.Fprintf(&b, "    - category: %s\n", strings.Join(course.Categories, ", "))
			fmt.Fprintf(&b, "    - level: %s\n", strings.Join(course.Levels, ", "))
			fmt.Fprintf(&b, "    - URL: %s\n", course.URL)

			keywords := descriptionKeywords(course.Description)
			if len(keywords) == 0 {
				b.WriteString("    - description: No description available\n")
				continue
			}
			b.WriteString("    - description:\n")
			for _, keyword := range keywords {
				fmt.Fprintf(&b, "      - %s\n", keyword)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatQuiz renders the structured quiz as the draft answer text.
func FormatQuiz(quiz *turn.Quiz) string {
	if quiz == nil || len(quiz.Questions) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Here is your quiz:\n\n")

	for i, question := range quiz.Questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, question.Question)
		for j, choice := range question.Choices {
			fmt.Fprintf(&b, "   %c) %s\n", 'a'+j, choice)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// descriptionKeywords splits a comma-separated course headline into its
// keywords.
func descriptionKeywords(description string) []string {
	if description == "" {
		return nil
	}

	parts := strings.Split(description, ",")
	keywords := make([]string, 0, len(parts))
	for _, part := range parts {
		if keyword := strings.TrimSpace(part); keyword != "" {
			keywords = append(keywords, keyword)
		}
	}
	return keywords
}
