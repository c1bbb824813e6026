package contract

import "math/rand"

// WorkspaceColors is the accent color palette for workspace badges.
var WorkspaceColors = []string{
	"#FF6B6B", // Coral Red
	"#4ECDC4", // Teal
	"#45B7D1", // Sky Blue
	"#96CEB4", // Sage Green
	"#FFEAA7", // Soft Yellow
	"#DDA0DD", // Plum
	"#98D8C8", // Mint
	"#F7DC6F", // Sunflower
	"#BB8FCE", // Lavender
	"#85C1E9", // Light Blue
}

// RandomColor picks a badge color from the palette.
func RandomColor() string {
	return WorkspaceColors[rand.Intn(len(WorkspaceColors))]
}
