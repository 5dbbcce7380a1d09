package fiscal_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
	"github.com/jhoicas/redevance-api/internal/domain/fiscal"
)

// memNodes árbol geográfico en memoria; cuenta las lecturas para verificar la terminación.
type memNodes struct {
	nodes map[string]*entity.GeographyNode
	reads int
	err   error
}

func (m *memNodes) GetByID(_ context.Context, id string) (*entity.GeographyNode, error) {
	m.reads++
	if m.err != nil {
		return nil, m.err
	}
	return m.nodes[id], nil
}

func strPtr(s string) *string { return &s }

func node(id, level string, parent, category *string) *entity.GeographyNode {
	return &entity.GeographyNode{ID: id, Name: id, Level: level, ParentID: parent, Category: category, IsActive: true}
}

func testTree() *memNodes {
	return &memNodes{nodes: map[string]*entity.GeographyNode{
		"kinshasa":  node("kinshasa", entity.LevelProvince, nil, nil),
		"gombe":     node("gombe", entity.LevelCommune, strPtr("kinshasa"), strPtr(entity.CategoryUrbaine)),
		"quartierX": node("quartierX", entity.LevelNeighborhood, strPtr("gombe"), nil),
		"kwilu":     node("kwilu", entity.LevelProvince, nil, nil),
		"bulungu":   node("bulungu", entity.LevelTerritory, strPtr("kwilu"), nil),
		"village":   node("village", entity.LevelNeighborhood, strPtr("bulungu"), nil),
	}}
}

func TestResolveCategory_HeredaDelAncestro(t *testing.T) {
	r := fiscal.NewHierarchyResolver(testTree())

	res, err := r.ResolveCategory(context.Background(), "quartierX")
	require.NoError(t, err)
	assert.Equal(t, entity.CategoryUrbaine, res.Category)
	assert.Equal(t, "gombe", res.SourceNodeID)
	assert.Equal(t, 1, res.Hops)
}

func TestResolveCategory_NodoConCategoriaPropia(t *testing.T) {
	r := fiscal.NewHierarchyResolver(testTree())

	res, err := r.ResolveCategory(context.Background(), "gombe")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Hops)
}

func TestResolveCategory_RaizSinCategoria(t *testing.T) {
	r := fiscal.NewHierarchyResolver(testTree())

	_, err := r.ResolveCategory(context.Background(), "village")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestResolveCategory_NodoInexistente(t *testing.T) {
	r := fiscal.NewHierarchyResolver(testTree())

	_, err := r.ResolveCategory(context.Background(), "nada")
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestResolveCategory_PadreInexistenteEsIntegridad(t *testing.T) {
	tree := testTree()
	tree.nodes["huerfano"] = node("huerfano", entity.LevelNeighborhood, strPtr("borrado"), nil)

	_, err := fiscal.NewHierarchyResolver(tree).ResolveCategory(context.Background(), "huerfano")
	assert.ErrorIs(t, err, domain.ErrIntegrity)
}

func TestResolveCategory_CicloTermina(t *testing.T) {
	tree := &memNodes{nodes: map[string]*entity.GeographyNode{
		"a": node("a", entity.LevelCommune, strPtr("b"), nil),
		"b": node("b", entity.LevelCity, strPtr("c"), nil),
		"c": node("c", entity.LevelProvince, strPtr("a"), nil),
	}}

	_, err := fiscal.NewHierarchyResolver(tree).ResolveCategory(context.Background(), "a")
	assert.ErrorIs(t, err, domain.ErrIntegrity)
	assert.LessOrEqual(t, tree.reads, 3, "cada nodo del ciclo se lee una sola vez")
}

func TestResolveCategory_CadenaDemasiadoLarga(t *testing.T) {
	tree := &memNodes{nodes: map[string]*entity.GeographyNode{}}
	var parent *string
	for i := 0; i < fiscal.MaxHierarchyDepth+5; i++ {
		id := string(rune('a'+i%26)) + string(rune('0'+i/26))
		tree.nodes[id] = node(id, entity.LevelCommune, parent, nil)
		parent = strPtr(id)
	}

	_, err := fiscal.NewHierarchyResolver(tree).ResolveCategory(context.Background(), *parent)
	assert.ErrorIs(t, err, domain.ErrIntegrity)
	assert.LessOrEqual(t, tree.reads, fiscal.MaxHierarchyDepth+1)
}

func TestResolveCategory_ErrorDeLectura(t *testing.T) {
	boom := errors.New("db caída")
	_, err := fiscal.NewHierarchyResolver(&memNodes{err: boom}).ResolveCategory(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}

func TestResolveCategory_IDVacio(t *testing.T) {
	_, err := fiscal.NewHierarchyResolver(testTree()).ResolveCategory(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
