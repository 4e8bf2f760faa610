package arena

import (
	"errors"
	"slices"
)

var ErrBoardNotFound = errors.New("arena board not found")

// Row is one line of an arena ranking. Votes and CI keep the published
// formatting ("2,292", "+15/-16").
type Row struct {
	Rank         int    `json:"rank"`
	Model        string `json:"model"`
	Organization string `json:"organization"`
	Score        int    `json:"score"`
	Votes        string `json:"votes"`
	CI           string `json:"ci,omitempty"`
	License      string `json:"license,omitempty"`
}

type Board struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	LastUpdated string `json:"last_updated"`
	TotalVotes  string `json:"total_votes"`
	TotalModels int    `json:"total_models"`
	Rows        []Row  `json:"rows"`
}

// Boards returns every arena board in display order. The result is a copy.
func Boards() []Board {
	out := make([]Board, len(boards))
	for i, b := range boards {
		out[i] = b.clone()
	}
	return out
}

// Lookup returns the board with the given slug.
func Lookup(slug string) (Board, error) {
	i := slices.IndexFunc(boards, func(b Board) bool { return b.Slug == slug })
	if i < 0 {
		return Board{}, ErrBoardNotFound
	}
	return boards[i].clone(), nil
}

func (b Board) clone() Board {
	b.Rows = slices.Clone(b.Rows)
	return b
}

var boards = []Board{
	{
		Slug:        "text",
		Title:       "Text VibeCoders Board",
		Description: "View rankings across various LLMs on their versatility, linguistic precision, and cultural context across text.",
		LastUpdated: "2025-05-23",
		TotalVotes:  "2,945,410",
		TotalModels: 243,
		Rows: []Row{
			{1, "gemini-2.5-pro-preview-05-06", "Google", 1446, "6,115", "+8/-6", "Proprietary"},
			{1, "o3-2025-04-16", "OpenAI", 1435, "7,921", "+6/-8", "Proprietary"},
			{2, "chatgpt-4o-latest-20250326", "OpenAI", 1422, "10,280", "+6/-8", "Proprietary"},
			{3, "gpt-4.5-preview-2025-02-27", "OpenAI", 1417, "15,276", "+5/-4", "Proprietary"},
			{3, "gemini-2.5-flash-preview-05-20", "Google", 1415, "3,892", "+8/-11", "Proprietary"},
			{6, "gemini-2.5-flash-preview-04-17", "Google", 1394, "6,938", "+8/-7", "Proprietary"},
			{6, "gpt-4.1-2025-04-14", "OpenAI", 1392, "6,094", "+7/-6", "Proprietary"},
			{6, "grok-3-preview-02-24", "xAI", 1388, "14,840", "+6/-4", "Proprietary"},
			{6, "deepseek-v3-0324", "DeepSeek", 1382, "9,741", "+6/-5", "MIT"},
			{6, "o4-mini-2025-04-16", "OpenAI", 1379, "6,102", "+8/-8", "Proprietary"},
		},
	},
	{
		Slug:        "webdev",
		Title:       "WebDev VibeCoders Board",
		Description: "Compare the performance of AI models specialized in web development tasks like HTML, CSS, and JavaScript.",
		LastUpdated: "2025-05-28",
		TotalVotes:  "122,675",
		TotalModels: 33,
		Rows: []Row{
			{1, "Claude Opus 4 (20250514)", "Anthropic", 1416, "1,494", "+17/-16", "Proprietary"},
			{1, "Gemini-2.5-Pro-Preview-05-06", "Google", 1409, "3,740", "+15/-10", "Proprietary"},
			{1, "Claude Sonnet 4 (20250514)", "Anthropic", 1386, "1,490", "+17/-15", "Proprietary"},
			{4, "Claude 3.7 Sonnet (20250219)", "Anthropic", 1357, "7,481", "+9/-7", "Proprietary"},
			{5, "Gemini-2.5-Flash-Preview-05-20", "Google", 1313, "2,312", "+12/-11", "Proprietary"},
			{6, "GPT-4.1-2025-04-14", "OpenAI", 1256, "5,278", "+10/-9", "Proprietary"},
			{7, "Claude 3.5 Sonnet (20241022)", "Anthropic", 1238, "26,338", "+4/-5", "Proprietary"},
			{8, "DeepSeek-V3-0324", "DeepSeek", 1207, "1,097", "+21/-21", "MIT"},
			{8, "DeepSeek-R1", "DeepSeek", 1199, "3,760", "+10/-9", "MIT"},
			{8, "o3-2025-04-16", "OpenAI", 1188, "4,209", "+9/-11", "Proprietary"},
		},
	},
	{
		Slug:        "vision",
		Title:       "Vision VibeCoders Board",
		Description: "View rankings across multimodal, generative AI models capable of understanding and processing visual inputs.",
		LastUpdated: "2025-05-23",
		TotalVotes:  "197,715",
		TotalModels: 75,
		Rows: []Row{
			{1, "gemini-2.5-pro-preview-05-06", "Google", 1291, "1,558", "+15/-15", "Proprietary"},
			{2, "o3-2025-04-16", "OpenAI", 1249, "1,235", "+21/-16", "Proprietary"},
			{2, "chatgpt-4o-latest-20250326", "OpenAI", 1247, "2,861", "+10/-11", "Proprietary"},
			{2, "gpt-4.5-preview-2025-02-27", "OpenAI", 1231, "3,059", "+13/-10", "Proprietary"},
			{2, "gemini-2.5-flash-preview-05-20", "Google", 1220, "493", "+19/-24", "Proprietary"},
			{3, "o4-mini-2025-04-16", "OpenAI", 1216, "1,091", "+18/-18", "Proprietary"},
			{4, "gpt-4.1-2025-04-14", "OpenAI", 1223, "2,020", "+9/-13", "Proprietary"},
			{4, "gemini-2.5-flash-preview-04-17", "Google", 1212, "2,365", "+11/-11", "Proprietary"},
			{6, "o1-2024-12-17", "OpenAI", 1199, "3,822", "+7/-9", "Proprietary"},
			{6, "gpt-4.1-mini-2025-04-14", "OpenAI", 1192, "1,415", "+14/-16", "Proprietary"},
		},
	},
	{
		Slug:        "text-to-image",
		Title:       "Text-to-Image VibeCoders Board",
		Description: "Comprehensive evaluation of AI image generation models, comparing quality, creativity, and prompt adherence.",
		LastUpdated: "2025-05-30",
		TotalVotes:  "25,988",
		TotalModels: 6,
		Rows: []Row{
			{Rank: 1, Model: "DALL-E 3", Organization: "OpenAI", Score: 92},
			{Rank: 2, Model: "Midjourney v6", Organization: "Midjourney Inc", Score: 89},
			{Rank: 3, Model: "Stable Diffusion XL", Organization: "Stability AI", Score: 85, License: "Open"},
			{Rank: 4, Model: "Adobe Firefly", Organization: "Adobe", Score: 83},
			{Rank: 5, Model: "Leonardo AI", Organization: "Leonardo", Score: 81},
			{Rank: 6, Model: "RunwayML", Organization: "Runway", Score: 78},
		},
	},
	{
		Slug:        "search",
		Title:       "Search VibeCoders Board",
		Description: "Compare search and retrieval models across various tasks and domains.",
		LastUpdated: "2025-05-30",
		TotalVotes:  "25,988",
		TotalModels: 14,
		Rows: []Row{
			{1, "gemini-2-pro-grounding", "Google", 1142, "1,215", "", "Proprietary"},
			{1, "ppl-sonar-reasoning-pro-high", "Perplexity", 1136, "861", "", "Proprietary"},
			{3, "ppl-sonar-reasoning", "Perplexity", 1097, "1,644", "", "Proprietary"},
			{3, "ppl-sonar", "Perplexity", 1072, "1,208", "", "Proprietary"},
			{3, "ppl-sonar-pro-high", "Perplexity", 1071, "1,364", "", "Proprietary"},
			{4, "ppl-sonar-pro", "Perplexity", 1066, "1,214", "", "Proprietary"},
			{7, "gemini-2.0-flash-grounding", "Google", 1028, "1,193", "", "Proprietary"},
			{7, "api-gpt-4o-search", "OpenAI", 1000, "1,196", "", "Proprietary"},
			{7, "api-gpt-4o-search-high", "OpenAI", 999, "1,707", "", "Proprietary"},
			{8, "api-gpt-4o-search-high-loc", "OpenAI", 994, "1,226", "", "Proprietary"},
		},
	},
	{
		Slug:        "copilot",
		Title:       "Copilot VibeCoders Board",
		Description: "Compare how well AI coding assistants understand and generate code across various programming languages and tasks.",
		LastUpdated: "2025-05-30",
		TotalVotes:  "25,988",
		TotalModels: 14,
		Rows: []Row{
			{1, "Deepseek V2.5 (FIM)", "Deepseek AI", 1028, "2,292", "+15/-16", "Deepseek"},
			{1, "Claude 3.5 Sonnet (06/20)", "Anthropic", 1012, "3,544", "+11/-12", "Proprietary"},
			{1, "Claude 3.5 Sonnet (10/22)", "Anthropic", 1004, "3,596", "+12/-10", "Proprietary"},
			{1, "Codestral (25.01)", "Mistral", 1001, "2,180", "+13/-12", "Mistral AI N..."},
			{1, "Qwen-2.5-Coder (FIM)", "Alibaba", 998, "3,401", "+16/-13", "Alibaba"},
			{1, "Mercury Coder Mini", "Inception AI", 994, "1,430", "+19/-18", "Unreleased"},
			{2, "Codestral (05/24)", "Mistral", 1001, "5,744", "+6/-9", "Mistral AI N..."},
			{3, "Gemini-1.5-Pro-002", "Google", 986, "3,441", "+10/-11", "Proprietary"},
			{3, "GPT-4o (08/06)", "OpenAI", 986, "4,464", "+11/-10", "Proprietary"},
			{3, "Meta-Llama-3.1-405B-Instruct", "Meta", 984, "3,432", "+10/-11", "Llama 3.1 C..."},
		},
	},
}
