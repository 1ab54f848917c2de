package graphfile

import (
	"fmt"
	"io"

	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// Write encodes the document as HCL. Loading the output yields an
// equivalent document.
func Write(w io.Writer, doc *Document) error {
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	pb := body.AppendNewBlock("process", nil).Body()
	pb.SetAttributeValue("width", cty.NumberIntVal(int64(doc.Process.Width)))
	pb.SetAttributeValue("height", cty.NumberIntVal(int64(doc.Process.Height)))
	pb.SetAttributeValue("use_perf_counter", cty.BoolVal(doc.Process.UsePerfCounter))

	for _, n := range doc.Nodes {
		body.AppendNewline()
		nb := body.AppendNewBlock("node", []string{n.Type}).Body()
		nb.SetAttributeValue("id", cty.NumberIntVal(int64(n.ID)))
		if n.Version != "" {
			nb.SetAttributeValue("version", cty.StringVal(n.Version))
		}
		nb.SetAttributeValue("pos", cty.TupleVal([]cty.Value{
			cty.NumberFloatVal(n.Pos.X),
			cty.NumberFloatVal(n.Pos.Y),
		}))
		if len(n.Settings) > 0 {
			nb.SetAttributeValue("settings", cty.ObjectVal(n.Settings))
		}
	}

	for _, l := range doc.Links {
		body.AppendNewline()
		lb := body.AppendNewBlock("link", nil).Body()
		lb.SetAttributeValue("from", cty.StringVal(l.From.String()))
		lb.SetAttributeValue("to", cty.StringVal(l.To.String()))
	}

	if _, err := w.Write(f.Bytes()); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	return nil
}
