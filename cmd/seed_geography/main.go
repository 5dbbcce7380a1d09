// seed_geography genera el script SQL que carga la jerarquía administrativa (province → ville/
// territoire → commune → quartier) a partir del XML oficial de entidades territoriales.
//
// Uso: go run ./cmd/seed_geography [ruta/entites.xml]
// Por defecto busca entites.xml en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/000003_seed_geography.{up,down}.sql
package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

type entites struct {
	Noeuds []noeud `xml:"noeud"`
}

type noeud struct {
	ID        string `xml:"id,attr"`
	Nom       string `xml:"nom,attr"`
	Niveau    string `xml:"niveau,attr"`
	Parent    string `xml:"parent,attr"`
	Categorie string `xml:"categorie,attr"`
}

func main() {
	xmlPath := "entites.xml"
	if len(os.Args) > 1 {
		xmlPath = os.Args[1]
	}
	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	nodes, err := parseNodes(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}
	ordered, err := orderNodes(nodes)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Jerarquía inválida: %v\n", err)
		os.Exit(1)
	}

	dir := filepath.Join(findModuleRoot(), "internal", "infrastructure", "postgres", "migrations")
	if err := writeFile(filepath.Join(dir, "000003_seed_geography.up.sql"), func(w io.Writer) error {
		return writeUp(w, ordered)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir up: %v\n", err)
		os.Exit(1)
	}
	if err := writeFile(filepath.Join(dir, "000003_seed_geography.down.sql"), func(w io.Writer) error {
		return writeDown(w, ordered)
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir down: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generado %s: %d nodos\n", dir, len(ordered))
}

// parseNodes decodifica el XML; los archivos oficiales vienen en ISO-8859-1.
func parseNodes(r io.Reader) ([]entity.GeographyNode, error) {
	var doc entites
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}

	out := make([]entity.GeographyNode, 0, len(doc.Noeuds))
	for _, n := range doc.Noeuds {
		id := strings.TrimSpace(n.ID)
		name := strings.TrimSpace(n.Nom)
		level := strings.ToLower(strings.TrimSpace(n.Niveau))
		if id == "" || name == "" {
			continue
		}
		if entity.LevelRank(level) < 0 {
			return nil, fmt.Errorf("nodo %s: nivel desconocido %q", id, n.Niveau)
		}
		node := entity.GeographyNode{ID: id, Name: name, Level: level, IsActive: true}
		if p := strings.TrimSpace(n.Parent); p != "" {
			node.ParentID = &p
		}
		if c := strings.ToUpper(strings.TrimSpace(n.Categorie)); c != "" {
			if !entity.IsValidCategory(c) {
				return nil, fmt.Errorf("nodo %s: categoría desconocida %q", id, n.Categorie)
			}
			node.Category = &c
		}
		out = append(out, node)
	}
	return out, nil
}

// orderNodes devuelve los nodos con cada padre antes que sus hijos (orden estable por nivel e id).
// Rechaza ids duplicados, padres ausentes y ciclos.
func orderNodes(nodes []entity.GeographyNode) ([]entity.GeographyNode, error) {
	byID := make(map[string]entity.GeographyNode, len(nodes))
	for _, n := range nodes {
		if _, dup := byID[n.ID]; dup {
			return nil, fmt.Errorf("id duplicado %s", n.ID)
		}
		byID[n.ID] = n
	}
	for _, n := range nodes {
		if n.ParentID != nil {
			if _, ok := byID[*n.ParentID]; !ok {
				return nil, fmt.Errorf("nodo %s: padre %s inexistente", n.ID, *n.ParentID)
			}
		}
	}

	depth := make(map[string]int, len(nodes))
	var depthOf func(id string, seen map[string]bool) (int, error)
	depthOf = func(id string, seen map[string]bool) (int, error) {
		if d, ok := depth[id]; ok {
			return d, nil
		}
		if seen[id] {
			return 0, fmt.Errorf("ciclo en %s", id)
		}
		seen[id] = true
		n := byID[id]
		d := 0
		if n.ParentID != nil {
			pd, err := depthOf(*n.ParentID, seen)
			if err != nil {
				return 0, err
			}
			d = pd + 1
		}
		depth[id] = d
		return d, nil
	}
	for _, n := range nodes {
		if _, err := depthOf(n.ID, map[string]bool{}); err != nil {
			return nil, err
		}
	}

	out := append([]entity.GeographyNode(nil), nodes...)
	sort.SliceStable(out, func(i, j int) bool {
		if depth[out[i].ID] != depth[out[j].ID] {
			return depth[out[i].ID] < depth[out[j].ID]
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func writeUp(w io.Writer, nodes []entity.GeographyNode) error {
	if _, err := io.WriteString(w, "-- Jerarquía administrativa generada por cmd/seed_geography\n\n"); err != nil {
		return err
	}
	for _, n := range nodes {
		_, err := fmt.Fprintf(w,
			"INSERT INTO geographies (id, name, level, parent_id, category) VALUES (%s, %s, %s, %s, %s)\n"+
				"ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, level = EXCLUDED.level, "+
				"parent_id = EXCLUDED.parent_id, category = EXCLUDED.category;\n",
			quote(n.ID), quote(n.Name), quote(n.Level), quoteNullable(n.ParentID), quoteNullable(n.Category))
		if err != nil {
			return err
		}
	}
	return nil
}

// writeDown borra en orden inverso (hijos antes que padres).
func writeDown(w io.Writer, nodes []entity.GeographyNode) error {
	for i := len(nodes) - 1; i >= 0; i-- {
		if _, err := fmt.Fprintf(w, "DELETE FROM geographies WHERE id = %s;\n", quote(nodes[i].ID)); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(out); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteNullable(s *string) string {
	if s == nil {
		return "NULL"
	}
	return quote(*s)
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
