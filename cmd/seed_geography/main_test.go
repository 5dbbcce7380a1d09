package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

const sample = `<?xml version="1.0" encoding="ISO-8859-1"?>
<entites>
  <noeud id="q-golf" nom="Golf" niveau="quartier" parent="c-lubumbashi"/>
  <noeud id="p-hk" nom="Haut-Katanga" niveau="province" categorie="urbano_rurale"/>
  <noeud id="c-lubumbashi" nom="Lubumbashi" niveau="commune" parent="v-lubumbashi"/>
  <noeud id="v-lubumbashi" nom="Lubumbashi" niveau="ville" parent="p-hk" categorie="URBAINE"/>
  <noeud id="t-kipushi" nom="Kipushi l'Étoile" niveau="territoire" parent="p-hk"/>
</entites>`

func latin1(t *testing.T, s string) []byte {
	t.Helper()
	b, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestParseNodes_DecodificaLatin1(t *testing.T) {
	nodes, err := parseNodes(bytes.NewReader(latin1(t, sample)))
	require.NoError(t, err)
	require.Len(t, nodes, 5)

	var kipushi string
	for _, n := range nodes {
		if n.ID == "t-kipushi" {
			kipushi = n.Name
		}
		if n.ID == "p-hk" {
			require.NotNil(t, n.Category)
			assert.Equal(t, "URBANO_RURALE", *n.Category)
		}
	}
	assert.Equal(t, "Kipushi l'Étoile", kipushi)
}

func TestParseNodes_NivelDesconocido(t *testing.T) {
	_, err := parseNodes(strings.NewReader(`<entites><noeud id="x" nom="X" niveau="region"/></entites>`))
	assert.Error(t, err)
}

func TestOrderNodes_PadresPrimero(t *testing.T) {
	nodes, err := parseNodes(bytes.NewReader(latin1(t, sample)))
	require.NoError(t, err)

	ordered, err := orderNodes(nodes)
	require.NoError(t, err)
	pos := map[string]int{}
	for i, n := range ordered {
		pos[n.ID] = i
	}
	assert.Less(t, pos["p-hk"], pos["v-lubumbashi"])
	assert.Less(t, pos["v-lubumbashi"], pos["c-lubumbashi"])
	assert.Less(t, pos["c-lubumbashi"], pos["q-golf"])
}

func TestOrderNodes_RechazaCicloYPadreAusente(t *testing.T) {
	cycle := `<entites>
  <noeud id="a" nom="A" niveau="commune" parent="b"/>
  <noeud id="b" nom="B" niveau="commune" parent="a"/>
</entites>`
	nodes, err := parseNodes(strings.NewReader(cycle))
	require.NoError(t, err)
	_, err = orderNodes(nodes)
	assert.ErrorContains(t, err, "ciclo")

	orphan := `<entites><noeud id="a" nom="A" niveau="commune" parent="zz"/></entites>`
	nodes, err = parseNodes(strings.NewReader(orphan))
	require.NoError(t, err)
	_, err = orderNodes(nodes)
	assert.ErrorContains(t, err, "inexistente")
}

func TestWriteUpYDown(t *testing.T) {
	nodes, err := parseNodes(bytes.NewReader(latin1(t, sample)))
	require.NoError(t, err)
	ordered, err := orderNodes(nodes)
	require.NoError(t, err)

	var up, down bytes.Buffer
	require.NoError(t, writeUp(&up, ordered))
	require.NoError(t, writeDown(&down, ordered))

	assert.Contains(t, up.String(), "('t-kipushi', 'Kipushi l''Étoile', 'territoire', 'p-hk', NULL)")
	assert.Contains(t, up.String(), "('p-hk', 'Haut-Katanga', 'province', NULL, 'URBANO_RURALE')")
	lines := strings.Split(strings.TrimSpace(down.String()), "\n")
	assert.Equal(t, "DELETE FROM geographies WHERE id = 'q-golf';", lines[0])
}
