package metadata

import "strings"

// aiToolKeywords maps lowercase substrings found in software/creator-tool
// fields to the canonical generator name reported in the evidence record.
// Order fixes the signature emission order.
var aiToolKeywords = []struct {
	keyword string
	name    string
}{
	{"midjourney", "Midjourney"},
	{"dall-e", "DALL-E"},
	{"dall·e", "DALL-E"},
	{"dalle", "DALL-E"},
	{"stable diffusion", "Stable Diffusion"},
	{"stablediffusion", "Stable Diffusion"},
	{"sdxl", "Stable Diffusion"},
	{"adobe firefly", "Adobe Firefly"},
	{"firefly", "Adobe Firefly"},
	{"flux", "FLUX"},
	{"imagen", "Imagen"},
	{"made with google ai", "Google AI"},
	{"leonardo.ai", "Leonardo AI"},
	{"leonardo ai", "Leonardo AI"},
	{"ideogram", "Ideogram"},
	{"runway", "Runway"},
	{"craiyon", "Craiyon"},
	{"nightcafe", "NightCafe"},
	{"comfyui", "ComfyUI"},
	{"automatic1111", "Stable Diffusion WebUI"},
	{"invokeai", "InvokeAI"},
	{"novelai", "NovelAI"},
}

// detectSignatures scans the given free-text metadata fields for generator
// fingerprints (case-insensitive substring match, imagefy-style) and returns
// the canonical names, deduplicated, in keyword-table order.
func detectSignatures(fields ...string) []string {
	seen := map[string]bool{}
	var out []string
	for _, kw := range aiToolKeywords {
		for _, f := range fields {
			if f == "" {
				continue
			}
			if strings.Contains(strings.ToLower(f), kw.keyword) {
				if !seen[kw.name] {
					seen[kw.name] = true
					out = append(out, kw.name)
				}
				break
			}
		}
	}
	return out
}
