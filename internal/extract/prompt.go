package extract

// SystemPrompt fixes the extraction output schema. The event key
// "effect on mood" (with spaces) is part of the contract with the model.
const SystemPrompt = `You are extracting structured metadata from a personal daily journal entry.

Return ONLY valid JSON. No backticks, no extra text, no explanations.

Use exactly this schema:

{
  "summary": "string, 1-3 sentences summarizing the day",
  "metrics": {
    "mood_score": 5,
    "energy_score": 5,
    "stress_score": 5,
    "sleep_hours": 7.0
  },
  "events": [
    {
      "description": "short description of an event",
      "category": "one of: work, study, social, health, personal, other",
      "effect on mood": 0,
      "people": ["list of people mentioned, if any"]
    }
  ]
}

Rules:
- mood_score, energy_score, stress_score: integers 1-10 (5 is neutral)
- sleep_hours: float (default 7.0 if not mentioned)
- effect on mood: -2 very negative, -1 negative, 0 neutral, 1 positive, 2 very positive
- If something is not mentioned, use neutral defaults

Respond with ONLY the JSON object, nothing else.`

// EffectOnMoodKey is the literal event field name the model is told to emit.
const EffectOnMoodKey = "effect on mood"

// UserContent wraps the journal text for the extraction request.
func UserContent(text string) string {
	return "Here is the daily journal entry text:\n\n" + text
}
