package prompt

import (
	"fmt"
	"sort"

	"github.com/bryanwahyu/petmoji/internal/domain/ai"
)

// DefaultVersion is used when the config does not pin a prompt.
const DefaultVersion = "v2"

const system = `You are an AI that analyzes a picture of a pet to determine its emotional state. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.`

const instructionV1 = `Your task is to:
1. Analyze the pet's facial expression. Do not identify the type of animal. Your goal is to understand the emotion conveyed by the face (e.g., happy, sleepy, curious, grumpy).
2. Return a standard Unicode emoji that represents this facial expression. For example, if the pet looks happy, you might return '😄'. If it looks sleepy, '😴'. Do not return an emoji of the animal itself (e.g., if it's a cow, do not return '🐄').
3. Provide a short, fun, single-sentence comment about the pet's expression.

If a face is not clearly visible, make a best guess based on the pet's posture or the overall context of the image.

Schema:
{"emoji": "<string>", "comment": "<string>"}`

const instructionV2 = `Your task is to:
1. Analyze the pet's facial expression. Do not identify the type of animal. Your goal is to understand the emotion conveyed by the face (e.g., happy, sleepy, curious, grumpy).
2. Return a standard Unicode emoji that represents this facial expression. For example, if the pet looks happy, you might return '😄'. If it looks sleepy, '😴'. Do not return an emoji of the animal itself (e.g., if it's a cow, do not return '🐄').
3. Provide a short, fun, single-sentence comment about the pet's expression.
4. Estimate how confident you are in the emotion, as a number from 0 to 100.

If a face is not clearly visible, make a best guess based on the pet's posture or the overall context of the image.

Schema:
{"emoji": "<string>", "comment": "<string>", "confidence": <number 0-100>}`

var versions = map[string]ai.Prompt{
	"v1": {Version: "v1", System: system, Instruction: instructionV1},
	"v2": {Version: "v2", System: system, Instruction: instructionV2, WithConfidence: true},
}

// Lookup returns the prompt for a version; empty means DefaultVersion.
func Lookup(version string) (ai.Prompt, error) {
	if version == "" {
		version = DefaultVersion
	}
	p, ok := versions[version]
	if !ok {
		return ai.Prompt{}, fmt.Errorf("unknown prompt version %q (known: %v)", version, Versions())
	}
	return p, nil
}

// Versions lists the known prompt versions, sorted.
func Versions() []string {
	out := make([]string, 0, len(versions))
	for v := range versions {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// UserText is the text part sent next to the image.
func UserText(p ai.Prompt) string {
	return p.Instruction + "\n\nHere is the pet's photo:"
}
