package loader

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// jsonBlock is one fenced code block that parsed as a JSON object.
type jsonBlock struct {
	payload map[string]any
	raw     []byte
}

// extractJSONBlocks parses markdown bytes and returns every fenced code
// block whose body is a JSON object. Blocks fenced as ```json that fail to
// parse are reported in badBlocks so the caller can record a format error;
// unfenced or non-JSON fences are ignored.
func extractJSONBlocks(source []byte) (blocks []jsonBlock, badBlocks []string) {
	md := goldmark.New()
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		lang := ""
		if fcb.Info != nil {
			lang = strings.ToLower(strings.TrimSpace(string(fcb.Info.Text(source))))
		}

		body := fencedBody(fcb, source)
		trimmed := bytes.TrimSpace(body)

		// Accept declared JSON fences, plus bare fences that look like an
		// object, since analysts are not consistent about the info string.
		if lang != "json" && (len(trimmed) == 0 || trimmed[0] != '{') {
			return ast.WalkContinue, nil
		}

		var payload map[string]any
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			if lang == "json" {
				badBlocks = append(badBlocks, err.Error())
			}
			return ast.WalkContinue, nil
		}
		blocks = append(blocks, jsonBlock{payload: payload, raw: trimmed})
		return ast.WalkContinue, nil
	})

	return blocks, badBlocks
}

func fencedBody(fcb *ast.FencedCodeBlock, source []byte) []byte {
	var buf bytes.Buffer
	lines := fcb.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		buf.Write(seg.Value(source))
	}
	return buf.Bytes()
}
