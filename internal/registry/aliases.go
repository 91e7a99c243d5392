package registry

// builtinAliases maps exact model names to the encoding they use. Mirrored
// from the known OpenAI model table, grounded on
// other_examples/richardpark-msft-waza__builder.go's ModelToEncoding (which
// covers only gpt-4o; the rest is filled in from the same family of names
// that table's prefix/exact split implies).
func builtinAliases() map[string]string {
	return map[string]string{
		"gpt-4o":                 "o200k_base",
		"gpt-4o-mini":            "o200k_base",
		"gpt-4":                  "cl100k_base",
		"gpt-4-32k":              "cl100k_base",
		"gpt-3.5-turbo":          "cl100k_base",
		"gpt-3.5":                "cl100k_base",
		"gpt-35-turbo":           "cl100k_base",
		"davinci-002":            "cl100k_base",
		"babbage-002":            "cl100k_base",
		"text-embedding-ada-002": "cl100k_base",
		"text-embedding-3-small": "cl100k_base",
		"text-embedding-3-large": "cl100k_base",
		"text-davinci-003":       "p50k_base",
		"text-davinci-002":       "p50k_base",
		"code-davinci-002":       "p50k_base",
		"code-davinci-001":       "p50k_base",
		"code-cushman-002":       "p50k_base",
		"code-cushman-001":       "p50k_base",
		"davinci-codex":          "p50k_base",
		"cushman-codex":          "p50k_base",
		"text-davinci-edit-001":  "p50k_edit",
		"code-davinci-edit-001":  "p50k_edit",
		"text-davinci-001":       "r50k_base",
		"text-curie-001":         "r50k_base",
		"text-babbage-001":       "r50k_base",
		"text-ada-001":           "r50k_base",
		"davinci":                "r50k_base",
		"curie":                  "r50k_base",
		"babbage":                "r50k_base",
		"ada":                    "r50k_base",
		"gpt2":                   "gpt2",
		"gpt-2":                  "gpt2",
	}
}

// builtinPrefixes maps a model-name prefix to the encoding it implies,
// checked when an exact alias match fails. Grounded on the same source's
// modelPrefixToEncoding table, extended with the o200k_harmony family.
func builtinPrefixes() map[string]string {
	return map[string]string{
		"gpt-4o-":        "o200k_base",
		"chatgpt-4o-":    "o200k_base",
		"o1-":            "o200k_base",
		"o3-":            "o200k_base",
		"gpt-4.":         "o200k_base",
		"gpt-5":          "o200k_base",
		"gpt-5.1-":       "o200k_base",
		"gpt-oss-":       "o200k_harmony",
		"gpt-4-":         "cl100k_base",
		"gpt-3.5-turbo-": "cl100k_base",
		"gpt-35-turbo-":  "cl100k_base",
	}
}
