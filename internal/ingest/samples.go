package ingest

// SampleJSON and SampleCSV document the accepted upload layouts.
const SampleJSON = `{
  "headers": [
    "AI System",
    "Organization",
    "System Type",
    "ARC-AGI-1",
    "ARC-AGI-2",
    "Cost/Task",
    "Code / Paper"
  ],
  "rows": [
    ["GPT-4o", "OpenAI", "Base LLM", "4.5%", "0.0%", "$0.080", "link"],
    ["Claude 3.5", "Anthropic", "CoT", "28.6%", "0.7%", "$0.510", "link"]
  ]
}`

const SampleCSV = `AI System,Organization,System Type,ARC-AGI-1,ARC-AGI-2,Cost/Task,Code / Paper
GPT-4o,OpenAI,Base LLM,4.5%,0.0%,$0.080,link
Claude 3.5,Anthropic,CoT,28.6%,0.7%,$0.510,link`

type Samples struct {
	JSON string `json:"json"`
	CSV  string `json:"csv"`
}

func SampleFormats() Samples {
	return Samples{JSON: SampleJSON, CSV: SampleCSV}
}
