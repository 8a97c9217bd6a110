package openai

const deadlineResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "deadline": {
      "type": "string",
      "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"
    },
    "found": {
      "type": "boolean"
    }
  },
  "required": ["found"],
  "additionalProperties": false
}`

const deadlinePrompt = `Find the application or submission deadline in the given text and return it as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

` + deadlineResponseSchema + `

Rules:
- The deadline must be formatted as YYYY-MM-DD.
- Only report a deadline that is explicitly stated in the text. Do not guess or infer one.
- Prefer the final submission deadline over letter-of-intent or pre-proposal dates.
- If the text mentions several cycles, report the earliest future deadline.
- If no deadline is stated, return {"found": false}.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Full proposals are due by 5:00 PM EST on March 15, 2026."
Output:
{"deadline": "2026-03-15", "found": true}

Example:
Input: "This program accepts applications on a rolling basis."
Output:
{"found": false}`
