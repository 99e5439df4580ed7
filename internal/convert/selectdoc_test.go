package convert

import "testing"

func TestSelectDocumentPrefersIndexHTML(t *testing.T) {
	entries := []Entry{
		{Path: "email.html", Data: []byte("b")},
		{Path: "assets/index.html", Data: []byte("a")},
	}
	doc, ok := SelectDocument(entries)
	if !ok {
		t.Fatal("expected a document")
	}
	if doc.Path != "assets/index.html" {
		t.Fatalf("selected %q, want assets/index.html", doc.Path)
	}
}

func TestSelectDocumentEmailFallback(t *testing.T) {
	entries := []Entry{
		{Path: "other.html"},
		{Path: "export/Email.HTML"},
	}
	doc, ok := SelectDocument(entries)
	if !ok {
		t.Fatal("expected a document")
	}
	if doc.Path != "export/Email.HTML" {
		t.Fatalf("selected %q, want export/Email.HTML", doc.Path)
	}
}

func TestSelectDocumentAnyHTMLFallback(t *testing.T) {
	entries := []Entry{
		{Path: "images/a.png"},
		{Path: "newsletter.html"},
	}
	doc, ok := SelectDocument(entries)
	if !ok {
		t.Fatal("expected a document")
	}
	if doc.Path != "newsletter.html" {
		t.Fatalf("selected %q", doc.Path)
	}
}

func TestSelectDocumentSubstringMatch(t *testing.T) {
	// Rule 1 and 2 accept substring containment anywhere in the path.
	entries := []Entry{{Path: "bundle/index.html.bak"}}
	doc, ok := SelectDocument(entries)
	if !ok {
		t.Fatal("expected a document")
	}
	if doc.Path != "bundle/index.html.bak" {
		t.Fatalf("selected %q", doc.Path)
	}
}

func TestSelectDocumentNotFound(t *testing.T) {
	entries := []Entry{
		{Path: "images/a.png"},
		{Path: "readme.txt"},
		{Path: "html", Dir: true},
	}
	if _, ok := SelectDocument(entries); ok {
		t.Fatal("expected no document")
	}
}

func TestSelectDocumentSkipsDirectories(t *testing.T) {
	entries := []Entry{
		{Path: "index.html", Dir: true},
		{Path: "body.html"},
	}
	doc, ok := SelectDocument(entries)
	if !ok {
		t.Fatal("expected a document")
	}
	if doc.Path != "body.html" {
		t.Fatalf("selected %q, want body.html", doc.Path)
	}
}
