package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/filler"
	"github.com/goliatone/go-formbuilder/pkg/importer/openapi"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/render"
	htmlrenderer "github.com/goliatone/go-formbuilder/pkg/renderers/html"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/store"
	exprvis "github.com/goliatone/go-formbuilder/pkg/visibility/expr"
	"gopkg.in/yaml.v3"
)

func main() {
	storagePath := flag.String("storage", "", "storage location: a directory, a .db file for sqlite, or empty for in-memory")
	templateID := flag.String("template", "", "instantiate the template with this id as a new form")
	importSource := flag.String("import", "", "OpenAPI document path to import forms from")
	operation := flag.String("operation", "", "operation ID to import (all importable operations if empty)")
	fillID := flag.String("fill", "", "fill the saved form with this id interactively")
	export := flag.String("export", "", "export format for saved forms: json, yaml or html")
	formID := flag.String("form", "", "restrict export to a single form id")
	output := flag.String("output", "", "output file (stdout if empty)")
	list := flag.Bool("list", false, "list saved forms and templates")
	submissions := flag.Bool("submissions", false, "list recorded submissions (use -form to filter)")
	flag.Parse()

	ctx := context.Background()

	backend, cleanup, err := openBackend(*storagePath)
	if err != nil {
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer cleanup()

	documents := store.New(ctx, store.WithStorage(backend))

	switch {
	case *list:
		listForms(documents)
	case *submissions:
		listSubmissions(ctx, backend, *formID)
	case *templateID != "":
		instantiateTemplate(documents, *templateID)
	case *importSource != "":
		importForms(ctx, documents, *importSource, *operation)
	case *fillID != "":
		fillForm(ctx, documents, backend, *fillID)
	case *export != "":
		exportForms(ctx, documents, *export, *formID, *output)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

func openBackend(path string) (storage.Storage, func(), error) {
	noop := func() {}
	switch {
	case path == "":
		return storage.NewMemory(), noop, nil
	case filepath.Ext(path) == ".db" || filepath.Ext(path) == ".sqlite":
		backend, err := storage.NewSQLite(path)
		if err != nil {
			return nil, noop, err
		}
		return backend, func() { backend.Close() }, nil
	default:
		backend, err := storage.NewFile(path)
		if err != nil {
			return nil, noop, err
		}
		return backend, noop, nil
	}
}

func listForms(documents *store.Store) {
	forms := documents.SavedForms()
	fmt.Printf("Saved forms (%d):\n", len(forms))
	for _, form := range forms {
		fmt.Printf("  %s  %q  fields=%d  updated=%s\n",
			form.ID, form.Title, len(form.Fields), form.UpdatedAt.Format(time.RFC3339))
	}
	fmt.Println("Templates:")
	for _, tpl := range documents.Templates() {
		fmt.Printf("  %s  %q  %s\n", tpl.ID, tpl.Name, tpl.Description)
	}
}

func listSubmissions(ctx context.Context, backend storage.Storage, formID string) {
	recorded, err := filler.Submissions(ctx, backend)
	if err != nil {
		log.Fatalf("Failed to read submissions: %v", err)
	}
	shown := 0
	for _, sub := range recorded {
		if formID != "" && sub.FormID != formID {
			continue
		}
		fmt.Printf("  %s  form=%s  submitted=%s  answers=%d\n",
			sub.ID, sub.FormID, sub.SubmittedAt.Format(time.RFC3339), len(sub.Data))
		shown++
	}
	fmt.Printf("Submissions (%d)\n", shown)
}

func instantiateTemplate(documents *store.Store, templateID string) {
	if !documents.LoadTemplate(templateID) {
		log.Fatalf("Unknown template %q", templateID)
	}
	id := documents.SaveForm()
	fmt.Printf("Created form %s from template %s\n", id, templateID)
}

func importForms(ctx context.Context, documents *store.Store, source, operation string) {
	raw, err := os.ReadFile(source)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", source, err)
	}

	shapes, err := openapi.New(openapi.Options{}).Import(ctx, raw)
	if err != nil {
		log.Fatalf("Failed to import: %v", err)
	}

	opIDs := make([]string, 0, len(shapes))
	for opID := range shapes {
		opIDs = append(opIDs, opID)
	}
	sort.Strings(opIDs)

	imported := 0
	for _, opID := range opIDs {
		if operation != "" && opID != operation {
			continue
		}
		shape := shapes[opID]
		documents.CreateNewForm()
		id := applyShape(documents, shape)
		fmt.Printf("Imported %s as form %s\n", opID, id)
		imported++
	}
	if imported == 0 {
		log.Fatalf("No matching operations in %s", source)
	}
}

// applyShape rebuilds the imported shape through store operations so every
// field gets a store-minted id. AddField keeps the field's content and only
// replaces id and step placement.
func applyShape(documents *store.Store, shape model.FormShape) string {
	documents.UpdateForm(store.FormPatch{
		Title:       &shape.Title,
		Description: &shape.Description,
	})
	for _, field := range shape.Fields {
		documents.AddField(field)
	}
	return documents.SaveForm()
}

func fillForm(ctx context.Context, documents *store.Store, backend storage.Storage, id string) {
	form, ok := documents.FormByID(id)
	if !ok {
		log.Fatalf("Unknown form %q", id)
	}

	renderer := tui.New(
		tui.WithStorage(backend),
		tui.WithEvaluator(exprvis.New()),
	)
	out, err := renderer.Render(ctx, form, render.Options{})
	if err != nil {
		log.Fatalf("Fill failed: %v", err)
	}
	fmt.Println(string(out))
}

func exportForms(ctx context.Context, documents *store.Store, format, formID, output string) {
	forms := documents.SavedForms()
	if formID != "" {
		form, ok := documents.FormByID(formID)
		if !ok {
			log.Fatalf("Unknown form %q", formID)
		}
		forms = []model.Form{form}
	}

	var data []byte
	var err error
	switch format {
	case "json":
		data, err = json.MarshalIndent(forms, "", "  ")
	case "yaml":
		data, err = yaml.Marshal(forms)
	case "html":
		renderer := htmlrenderer.New()
		for _, form := range forms {
			out, renderErr := renderer.Render(ctx, form, render.Options{})
			if renderErr != nil {
				log.Fatalf("Failed to render %s: %v", form.ID, renderErr)
			}
			data = append(data, out...)
		}
	default:
		log.Fatalf("Unknown export format %q", format)
	}
	if err != nil {
		log.Fatalf("Failed to export: %v", err)
	}

	if output != "" {
		if err := os.WriteFile(output, data, 0o644); err != nil {
			log.Fatalf("Failed to write output: %v", err)
		}
		fmt.Printf("Exported to %s\n", output)
	} else {
		fmt.Println(string(data))
	}
}
