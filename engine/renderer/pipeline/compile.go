package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/apiary/engine/renderer/shader"
	"github.com/charmbracelet/log"
	"github.com/gogpu/naga"
)

// compileWGSL runs the source through the naga front end so syntax and type errors surface
// before the backend sees the module. Validator findings are logged only; the backend has
// the final say on what it accepts.
func compileWGSL(s shader.Shader, validate bool) error {
	ast, err := naga.Parse(s.Source())
	if err != nil {
		return err
	}
	module, err := naga.LowerWithSource(ast, s.Source())
	if err != nil {
		return fmt.Errorf("lowering error: %w", err)
	}
	if !validate {
		return nil
	}

	issues, err := naga.Validate(module)
	if err != nil {
		log.Warnf("validator failed on %s: %v", s.Key(), err)
		return nil
	}
	for _, issue := range issues {
		log.Warnf("%s: %s", s.Key(), issue.Error())
	}
	return nil
}
