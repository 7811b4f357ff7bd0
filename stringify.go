package patricia

import (
	"fmt"
	"io"
	"strings"
)

// String returns a hierarchical tree diagram of the stored CIDRs, just
// a wrapper for [tree.Fprint]. If Fprint returns an error, String
// panics.
func (t *tree[V]) String() string {
	w := new(strings.Builder)
	if err := t.Fprint(w); err != nil {
		panic(err)
	}
	return w.String()
}

// Fprint writes the table as a tree diagram, supernets above their
// subnets:
//
//	▼
//	├─ 10.0.0.0/8 (a)
//	│  └─ 10.1.0.0/16 (b)
//	└─ 192.168.0.0/16 (c)
func (t *tree[V]) Fprint(w io.Writer) error {
	if t.size == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "▼"); err != nil {
		return err
	}
	return fprintRec(w, t.DumpList(), "")
}

func fprintRec[V any](w io.Writer, elems []ListElement[V], pad string) error {
	for i, e := range elems {
		glyph, childPad := "├─ ", pad+"│  "
		if i == len(elems)-1 {
			glyph, childPad = "└─ ", pad+"   "
		}

		if _, err := fmt.Fprintf(w, "%s%s%s (%v)\n", pad, glyph, e.Cidr, e.Value); err != nil {
			return err
		}
		if err := fprintRec(w, e.Subnets, childPad); err != nil {
			return err
		}
	}
	return nil
}
