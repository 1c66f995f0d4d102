package analytics

import "strings"

// SourceOther is the fallback channel for tags missing from the table.
const SourceOther = "otro"

// SourceInfo is the display metadata of a lead channel.
type SourceInfo struct {
	Tag   string
	Label string
	Color string
}

// LeadSources is the canonical channel table, in display order.
var LeadSources = []SourceInfo{
	{Tag: "web", Label: "Sitio Web", Color: "#3B82F6"},
	{Tag: "recomendacion", Label: "Recomendación", Color: "#10B981"},
	{Tag: "feria", Label: "Feria/Evento", Color: "#F59E0B"},
	{Tag: "campaña", Label: "Campaña Publicitaria", Color: "#EF4444"},
	{Tag: "campaña_facebook", Label: "Campaña Facebook", Color: "#1877F2"},
	{Tag: "campaña_tiktok", Label: "Campaña TikTok", Color: "#111827"},
	{Tag: "facebook_ads", Label: "Facebook Ads", Color: "#4267B2"},
	{Tag: "whatsapp_web", Label: "WhatsApp Web", Color: "#25D366"},
	{Tag: "redes_sociales", Label: "Redes Sociales", Color: "#8B5CF6"},
	{Tag: "publicidad", Label: "Publicidad", Color: "#EC4899"},
	{Tag: "referido", Label: "Referido", Color: "#14B8A6"},
	{Tag: SourceOther, Label: "Otro", Color: "#6B7280"},
}

var leadSourceIndex = func() map[string]SourceInfo {
	idx := make(map[string]SourceInfo, len(LeadSources))
	for _, s := range LeadSources {
		idx[s.Tag] = s
	}
	return idx
}()

// LookupSource returns the display info for tag. Unknown tags, including
// the unspecified bucket, resolve to the "otro" entry with known=false so
// callers can log them.
func LookupSource(tag string) (info SourceInfo, known bool) {
	if s, ok := leadSourceIndex[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return s, true
	}
	fallback := leadSourceIndex[SourceOther]
	fallback.Tag = tag
	return fallback, false
}

// KnownSourceTags returns every canonical tag in display order.
func KnownSourceTags() []string {
	tags := make([]string, len(LeadSources))
	for i, s := range LeadSources {
		tags[i] = s.Tag
	}
	return tags
}
