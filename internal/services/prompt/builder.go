package prompt

// BasePrompt is the fixed try-on instruction sent with every request. The
// subject arrives with a transparent background after the removal step.
const BasePrompt = `try these clothes on me. The person in the image has a transparent background - please maintain the person's pose and appearance while applying the clothing items naturally.`

// scenePrompts maps each recognized scene label to its descriptive clause.
var scenePrompts = map[string]string{
	"office":     ", in a modern office environment, professional setting, corporate atmosphere",
	"restaurant": ", in an elegant restaurant, dining setting, sophisticated ambiance",
	"street":     ", on a busy city street, urban environment, street photography style",
	"home":       ", in a cozy home setting, comfortable indoor environment, natural lighting",
	"beach":      ", on a beautiful beach, seaside setting, sunny outdoor atmosphere",
	"gym":        ", in a modern gym, fitness environment, athletic setting",
	"party":      ", at a lively party, festive atmosphere, celebration setting",
	"wedding":    ", at an elegant wedding, formal ceremony setting, romantic atmosphere",
	"studio":     ", in a professional photo studio, clean background, studio lighting",
	"nature":     ", in a natural outdoor setting, scenic background, natural lighting",
}

// Build renders the generation prompt for an optional scene label. Unknown
// labels are ignored and the base instruction is returned unchanged.
func Build(scene string) string {
	if clause, ok := scenePrompts[scene]; ok {
		return BasePrompt + clause
	}
	return BasePrompt
}

// KnownScene reports whether the label has a descriptive clause.
func KnownScene(scene string) bool {
	_, ok := scenePrompts[scene]
	return ok
}
