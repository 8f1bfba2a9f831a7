package openai

const extractionResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "scheme_name": {"type": "string"},
    "income": {
      "type": "object",
      "properties": {
        "min": {"type": ["number", "null"]},
        "max": {"type": ["number", "null"]}
      }
    },
    "age": {
      "type": "object",
      "properties": {
        "min": {"type": ["integer", "null"]},
        "max": {"type": ["integer", "null"]}
      }
    },
    "eligible_genders": {"type": "array", "items": {"type": "string"}},
    "eligible_states": {"type": "array", "items": {"type": "string"}},
    "eligible_categories": {"type": "array", "items": {"type": "string"}},
    "benefits": {"type": "array", "items": {"type": "string"}},
    "application_steps": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["scheme_name", "income", "age", "eligible_genders",
               "eligible_states", "eligible_categories", "benefits",
               "application_steps"],
  "additionalProperties": false
}`

const extractionSystemPrompt = `You analyze Indian government welfare scheme text and extract structured facts as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

` + extractionResponseSchema + `

Rules:
- Only extract criteria that are EXPLICITLY stated in the text. Never invent a restriction.
- If the text does not mention a bound, use null. If it does not restrict a set, use ["all"].
- Income bounds are annual amounts in rupees. "2 lakh" means 200000, "1.5 crore" means 15000000.
- eligible_genders values: "male", "female", "other", or "all".
- eligible_categories values: "general", "sc", "st", "obc", "minority", or "all".
- eligible_states are lowercase Indian state names, or ["all"] for central / nationwide schemes.
- scheme_name is the official scheme name; use "Unknown Scheme" if none is identifiable.
- benefits and application_steps are short plain-language bullet strings, in the order they appear.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "The Post-Matric Scholarship supports SC students whose family income is below Rs. 2.5 lakh per annum. Apply online at the national scholarship portal with your caste certificate."
Output:
{
  "scheme_name": "Post-Matric Scholarship",
  "income": {"min": null, "max": 250000},
  "age": {"min": null, "max": null},
  "eligible_genders": ["all"],
  "eligible_states": ["all"],
  "eligible_categories": ["sc"],
  "benefits": ["Scholarship support for post-matric studies"],
  "application_steps": ["Apply online at the national scholarship portal", "Submit caste certificate"]
}`
