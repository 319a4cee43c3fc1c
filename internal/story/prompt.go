package story

import (
	"fmt"
	"strings"

	"github.com/storytailor/storytailor/internal/llm"
)

const defaultLearningGoal = "A fun and educational story"

const ragSystemTemplate = `You are a children's story writer for %d-year-old children.
Base the story strictly on the reference information below.

## Reference information (use only these facts):
%s

## Important directives:
1. Use only facts from the reference information
2. Do not include information you are not sure about
3. Use vocabulary and sentence length appropriate for a %d-year-old
4. Avoid violent or scary content
5. Include positive messages and lessons
`

const ragUserTemplate = `Topic: %s
Learning Goal: %s

Please write a short story on the above topic. Weave the facts from the reference information in naturally.`

const basicSystemTemplate = `You are a children's story writer for %d-year-old children.
Use vocabulary and sentence length appropriate for the child's age.
Avoid violent or scary content and include positive messages.`

const basicUserTemplate = `Topic: %s
Learning Goal: %s

Please write a short story on the above topic.`

func ragInstructions(age int, contextBlock string, preferences []string, learningGoal, query string) []llm.Instruction {
	topic := query
	if len(preferences) > 0 {
		topic = strings.Join(preferences, ", ")
	}
	if learningGoal == "" {
		learningGoal = defaultLearningGoal
	}
	return []llm.Instruction{
		{Role: llm.RoleSystem, Text: fmt.Sprintf(ragSystemTemplate, age, contextBlock, age)},
		{Role: llm.RoleUser, Text: fmt.Sprintf(ragUserTemplate, topic, learningGoal)},
	}
}

func basicInstructions(age int, query, learningGoal string) []llm.Instruction {
	if learningGoal == "" {
		learningGoal = defaultLearningGoal
	}
	return []llm.Instruction{
		{Role: llm.RoleSystem, Text: fmt.Sprintf(basicSystemTemplate, age)},
		{Role: llm.RoleUser, Text: fmt.Sprintf(basicUserTemplate, query, learningGoal)},
	}
}
