//-------------------------------------------------------------------------
//
// pgEdge Model Discovery
//
// Copyright (c) 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package generation

import (
	"strings"

	"github.com/pgEdge/pgedge-discovery/internal/intent"
	"github.com/pgEdge/pgedge-discovery/internal/llm"
)

const baseSystemPrompt = `You are an assistant that helps people choose and understand AI models.
Answer the question using only the information from the context.
If the context doesn't contain enough information to answer, say so plainly.`

// InsufficientContext is the instruction used when retrieval found nothing.
const InsufficientContext = `No reference material was found for this question.
Say that there is not enough information available to answer it reliably,
and suggest what details would help.`

func styleInstruction(style intent.ResponseStyle) string {
	switch style {
	case intent.StyleDirect:
		return "Answer directly with the specific facts asked for."
	case intent.StyleComparative:
		return "Compare the models side by side and call out where they differ."
	case intent.StyleAdvisory:
		return "Recommend the best fit for the described use case and explain the trade-offs."
	case intent.StyleTechnical:
		return "Give precise technical details such as parameters, limits and API behaviour."
	case intent.StyleDescriptive:
		return "Describe the relevant capabilities and features."
	case intent.StyleStepByStep:
		return "Walk through the fix as numbered steps."
	default:
		return "Be concise and accurate."
	}
}

// BuildPrompt assembles the prompt for a query. A non-empty system
// overrides the built-in instructions; the style line is always added.
func BuildPrompt(query, context string, style intent.ResponseStyle, history []llm.Message, system string) Prompt {
	if system == "" {
		system = baseSystemPrompt
	}
	parts := []string{system, styleInstruction(style)}
	if strings.TrimSpace(context) == "" {
		parts = append(parts, InsufficientContext)
	}
	return Prompt{
		System:  strings.Join(parts, "\n"),
		Context: context,
		Query:   query,
		History: history,
	}
}
