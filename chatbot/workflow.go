package chatbot

import (
	"github.com/saharlajmi1/recmooc4all/core/turn"
	"github.com/saharlajmi1/recmooc4all/patterns/flow"
)

// Node names. Routers reference these through the edge tables below, so a
// typo fails at Build time instead of at runtime.
const (
	nodeDetectLanguage      = "detect_language"
	nodeSpeechToText        = "speech_to_text"
	nodeDetectEmotion       = "detect_emotion"
	nodeClassifyQuery       = "classify_query"
	nodeProvideFeedback     = "provide_feedback"
	nodeRoadmapGeneration   = "roadmap_generation"
	nodeCoursesMetadata     = "generate_courses_metadatas"
	nodeCoursesRecommend    = "generate_courses_recommandation"
	nodeAssistantClass      = "assistant_classification"
	nodeProvideAssistance   = "provide_assistance"
	nodeUnhandledAssistance = "unhandled_assistance"
	nodePlatformAssistant   = "platform_assistant"
	nodeGenerateQuiz        = "generate_quiz"
	nodeGenerateFinalAnswer = "generate_final_answer"
	nodePrepareTTS          = "prepare_tts"
	nodeTextToSpeech        = "text_to_speech"
)

// entryRouter sends audio turns through transcription first; text turns go
// straight to sentiment detection.
func entryRouter(state turn.State) string {
	if len(state.AudioInput) > 0 {
		return nodeSpeechToText
	}
	return nodeDetectEmotion
}

// classificationRouter maps the classification onto the next node. Only the
// six enumerated intents are mapped; anything else is a routing defect.
func classificationRouter(state turn.State) string {
	return string(state.Classification)
}

var classificationTable = map[string]string{
	string(turn.ClassificationRecommendation):    nodeCoursesMetadata,
	string(turn.ClassificationAssistance):        nodeAssistantClass,
	string(turn.ClassificationFeedback):          nodeProvideFeedback,
	string(turn.ClassificationPlatformAssistant): nodePlatformAssistant,
	string(turn.ClassificationRoadmap):           nodeRoadmapGeneration,
	string(turn.ClassificationQuiz):              nodeGenerateQuiz,
}

// assistantRouter splits assistance turns into the answerable and the
// explicitly declined.
func assistantRouter(state turn.State) string {
	return string(state.AssistantClassification)
}

var assistantTable = map[string]string{
	string(turn.SimpleAssistance):  nodeProvideAssistance,
	string(turn.ComplexAssistance): nodeUnhandledAssistance,
}

// outputRouter picks the exit path: turns that began as audio end in speech
// synthesis, text turns end in answer finalization.
func outputRouter(state turn.State) string {
	if state.IsAudioInput {
		return nodePrepareTTS
	}
	return nodeGenerateFinalAnswer
}

var outputTable = map[string]string{
	nodePrepareTTS:          nodePrepareTTS,
	nodeGenerateFinalAnswer: nodeGenerateFinalAnswer,
}

// buildFlow assembles the turn graph. Every answer-producing node routes
// through outputRouter, the feedback node cycles back into classification,
// and both exit paths reach End.
func (c *Chatbot) buildFlow() (*flow.Flow[turn.State], error) {
	opts := []flow.Option{
		flow.WithObserver(c.observer),
	}
	if c.nodeTimeout > 0 {
		opts = append(opts, flow.WithNodeTimeout(c.nodeTimeout))
	}
	if c.turnDeadline > 0 {
		opts = append(opts, flow.WithRunTimeout(c.turnDeadline))
	}
	if c.maxVisits > 0 {
		opts = append(opts, flow.WithMaxVisits(c.maxVisits))
	}

	builder := flow.NewBuilder[turn.State](nodeDetectLanguage, opts...).
		AddNode(nodeDetectLanguage, c.detectLanguage).
		AddNode(nodeSpeechToText, c.speechToText).
		AddNode(nodeDetectEmotion, c.detectEmotion).
		AddNode(nodeClassifyQuery, c.classifyQuery).
		AddNode(nodeProvideFeedback, c.provideFeedback).
		AddNode(nodeRoadmapGeneration, c.generateRoadmap).
		AddNode(nodeCoursesMetadata, c.extractCoursesMetadata).
		AddNode(nodeCoursesRecommend, c.recommendCourses).
		AddNode(nodeAssistantClass, c.classifyAssistance).
		AddNode(nodeProvideAssistance, c.provideAssistance).
		AddNode(nodeUnhandledAssistance, c.declineAssistance).
		AddNode(nodePlatformAssistant, c.answerPlatformQuestion).
		AddNode(nodeGenerateQuiz, c.generateQuiz).
		AddNode(nodeGenerateFinalAnswer, c.finalizeAnswer).
		AddNode(nodePrepareTTS, c.prepareSpeech).
		AddNode(nodeTextToSpeech, c.synthesizeSpeech)

	builder.
		AddConditionalEdges(nodeDetectLanguage, entryRouter, map[string]string{
			nodeSpeechToText:  nodeSpeechToText,
			nodeDetectEmotion: nodeDetectEmotion,
		}).
		AddEdge(nodeSpeechToText, nodeDetectEmotion).
		AddEdge(nodeDetectEmotion, nodeClassifyQuery).
		AddConditionalEdges(nodeClassifyQuery, classificationRouter, classificationTable).
		AddEdge(nodeProvideFeedback, nodeClassifyQuery).
		AddEdge(nodeRoadmapGeneration, nodeCoursesMetadata).
		AddEdge(nodeCoursesMetadata, nodeCoursesRecommend).
		AddConditionalEdges(nodeAssistantClass, assistantRouter, assistantTable)

	// Answer-producing nodes all exit through the audio/text output router.
	for _, name := range []string{
		nodeProvideAssistance,
		nodeUnhandledAssistance,
		nodePlatformAssistant,
		nodeCoursesRecommend,
		nodeGenerateQuiz,
	} {
		builder.AddConditionalEdges(name, outputRouter, outputTable)
	}

	builder.
		AddEdge(nodeGenerateFinalAnswer, flow.End).
		AddEdge(nodePrepareTTS, nodeTextToSpeech).
		AddEdge(nodeTextToSpeech, flow.End)

	return builder.Build()
}
