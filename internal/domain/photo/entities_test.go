package photo

import (
	"bytes"
	"testing"
)

func TestHash(t *testing.T) {
	// sha256("")
	if got := Hash(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Fatalf("Hash(nil) = %s", got)
	}
	b := bytes.Repeat([]byte{0xAA}, 1<<20)
	if len(Hash(b)) != 64 {
		t.Fatalf("hash must be 64 hex chars")
	}
	if Hash(b) != Hash(append([]byte(nil), b...)) {
		t.Fatalf("hash must be stable")
	}
}

func TestTable(t *testing.T) {
	if Table(KindReport) != "fotos_relatorio" || Table(KindExpress) != "fotos_relatorios_express" {
		t.Fatalf("unexpected table names")
	}
	if Table("") != "fotos_relatorio" {
		t.Fatalf("empty kind defaults to report photos")
	}
}

func TestAnnotationList(t *testing.T) {
	p := &Photo{Annotations: []byte(`[{"shape":"rect","x1":0.1,"y1":0.2,"x2":0.5,"y2":0.6,"color":"#ff0000"}]`)}
	got := p.AnnotationList()
	if len(got) != 1 || got[0].Shape != "rect" || got[0].X2 != 0.5 {
		t.Fatalf("unexpected annotations: %+v", got)
	}
	if (&Photo{Annotations: []byte(`{bad`)}).AnnotationList() != nil {
		t.Fatalf("malformed overlay must decode to nil")
	}
	if (&Photo{}).AnnotationList() != nil {
		t.Fatalf("empty overlay must decode to nil")
	}
}
