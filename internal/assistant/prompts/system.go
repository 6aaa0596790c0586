package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed template/system_prompt.txt
var systemPromptTemplate string

var systemTpl = template.Must(template.New("system").Parse(systemPromptTemplate))

// SystemVars carries the wallet facts injected into the system prompt.
// Absent values degrade to "not connected"/"unknown" rather than failing.
type SystemVars struct {
	Address string
	Balance *float64
	Network string
}

// RenderSystem renders the assistant's system instruction.
func RenderSystem(vars SystemVars) (string, error) {
	address := vars.Address
	if address == "" {
		address = "not connected"
	}
	balance := "unknown"
	if vars.Balance != nil {
		balance = fmt.Sprintf("%.6f STX", *vars.Balance)
	}
	network := vars.Network
	if network == "" {
		network = "unknown"
	}

	var b strings.Builder
	err := systemTpl.Execute(&b, map[string]string{
		"Address": address,
		"Balance": balance,
		"Network": network,
	})
	if err != nil {
		return "", fmt.Errorf("render system prompt: %w", err)
	}
	return b.String(), nil
}
