// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package arbor

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"

	"github.com/tochemey/arbor/config"
	"github.com/tochemey/arbor/core"
	"github.com/tochemey/arbor/document"
	"github.com/tochemey/arbor/errors"
	"github.com/tochemey/arbor/internal/types"
	"github.com/tochemey/arbor/log"
	"github.com/tochemey/arbor/mapper"
	"github.com/tochemey/arbor/tree"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type point struct {
	x, y int
}

type person struct {
	Name   string
	Age    int
	Tags   []string
	Born   time.Time
	Scores map[string]int
	Friend *person
}

type link struct {
	Name string
	Next *link
}

type base struct {
	Name string
}

type derived struct {
	base
	Name string
}

type bag struct {
	Items []string
}

type shape interface {
	Area() int
}

type square struct {
	Side int
}

func (s square) Area() int { return s.Side * s.Side }

type holder struct {
	Shape shape
}

type celsius struct {
	Degrees float64
}

func (c celsius) WriteReplace() any {
	return reading{Value: strconv.FormatFloat(c.Degrees, 'f', 1, 64) + "C"}
}

type reading struct {
	Value string
}

func (r reading) ReadResolve() any {
	degrees, _ := strconv.ParseFloat(strings.TrimSuffix(r.Value, "C"), 64)
	return celsius{Degrees: degrees}
}

type secret struct {
	Key string
}

type leaf struct {
	Y int
}

type left struct {
	leaf
}

type right struct {
	leaf
}

type tower struct {
	left
	right
	Y int
}

type shelfLeft struct {
	bag
}

type shelfRight struct {
	bag
}

type shelves struct {
	shelfLeft
	shelfRight
}

type account struct {
	id   int
	Name string
}

type track struct {
	Title string
	Year  int
}

type album struct {
	Tracks map[string]track
}

type catalog struct {
	Prices map[string]int
}

type trio struct {
	Items [3]string
}

type pair struct {
	A, B []string
}

type anyholder struct {
	Value any
}

// smuggler resolves "evil" to a type nobody registered
type smuggler struct {
	mapper.Wrapper
}

func (s *smuggler) ResolveType(name string) (reflect.Type, error) {
	if name == "evil" {
		return reflect.TypeOf(secret{}), nil
	}
	return s.Wrapper.ResolveType(name)
}

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	engine, err := New(opts...)
	require.NoError(t, err)
	engine.Alias("Point", point{})
	engine.Alias("person", person{})
	engine.Alias("link", link{})
	engine.Alias("base", base{})
	engine.Alias("derived", derived{})
	engine.Alias("bag", bag{})
	engine.Alias("holder", holder{})
	engine.Alias("square", square{})
	engine.Alias("celsius", celsius{})
	engine.Alias("reading", reading{})
	engine.Alias("leaf", leaf{})
	engine.Alias("tower", tower{})
	engine.Alias("shelves", shelves{})
	engine.Alias("account", account{})
	engine.Alias("album", album{})
	engine.Alias("catalog", catalog{})
	engine.Alias("trio", trio{})
	engine.Alias("pair", pair{})
	engine.Alias("anyholder", anyholder{})
	return engine
}

func parse(t *testing.T, xml string) *tree.Node {
	t.Helper()
	node, err := tree.UnmarshalXML([]byte(xml))
	require.NoError(t, err)
	return node
}

func TestEngine(t *testing.T) {
	t.Run("With a struct with unexported members", func(t *testing.T) {
		engine := newEngine(t)

		node, err := engine.Marshal(point{x: 1, y: 2})
		require.NoError(t, err)
		assert.Equal(t, "<Point><x>1</x><y>2</y></Point>", node.String())

		var actual point
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, point{x: 1, y: 2}, actual)
	})
	t.Run("With an explicit field order", func(t *testing.T) {
		engine := newEngine(t)
		engine.SetFieldOrder(reflect.TypeOf(point{}), "y", "x")

		node, err := engine.Marshal(point{x: 1, y: 2})
		require.NoError(t, err)
		assert.Equal(t, "<Point><y>2</y><x>1</x></Point>", node.String())
	})
	t.Run("With an incomplete field order", func(t *testing.T) {
		engine := newEngine(t)
		engine.SetFieldOrder(reflect.TypeOf(point{}), "y")

		_, err := engine.Marshal(point{x: 1, y: 2})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrIncompleteFieldOrder)
	})
	t.Run("With a round trip of a graph", func(t *testing.T) {
		engine := newEngine(t)
		friend := &person{Name: "Ada", Age: 36}
		expected := person{
			Name:   "Alan",
			Age:    41,
			Tags:   []string{"math", "logic"},
			Born:   time.Date(1912, time.June, 23, 0, 0, 0, 0, time.UTC),
			Scores: map[string]int{"chess": 3, "go": 1},
			Friend: friend,
		}

		node, err := engine.Marshal(expected)
		require.NoError(t, err)
		assert.Equal(t, "person", node.Name)
		require.NotNil(t, node.Child("Tags"))
		assert.Len(t, node.Child("Tags").Children, 2)

		var actual person
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.True(t, expected.Born.Equal(actual.Born))
		actual.Born = expected.Born
		assert.Equal(t, expected, actual)
	})
	t.Run("With a nil value", func(t *testing.T) {
		engine := newEngine(t)

		node, err := engine.Marshal(nil)
		require.NoError(t, err)
		assert.Equal(t, "<null></null>", node.String())

		actual := &person{Name: "x"}
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Nil(t, actual)

		decoded, err := engine.Decode(node)
		require.NoError(t, err)
		assert.Nil(t, decoded)
	})
	t.Run("With an invalid target", func(t *testing.T) {
		engine := newEngine(t)
		node := parse(t, "<Point><x>1</x><y>2</y></Point>")

		err := engine.Unmarshal(node, point{})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidTarget)

		var target *point
		err = engine.Unmarshal(node, target)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidTarget)

		err = engine.Unmarshal(nil, &point{})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidValue)
	})
	t.Run("With a document read by its root name", func(t *testing.T) {
		engine := newEngine(t)

		decoded, err := engine.Decode(parse(t, "<Point><x>3</x><y>4</y></Point>"))
		require.NoError(t, err)
		assert.Equal(t, point{x: 3, y: 4}, decoded)

		var actual any
		require.NoError(t, engine.Unmarshal(parse(t, "<Point><x>5</x></Point>"), &actual))
		assert.Equal(t, point{x: 5}, actual)
	})
	t.Run("With a shadowed member", func(t *testing.T) {
		engine := newEngine(t)
		expected := derived{base: base{Name: "inner"}, Name: "outer"}

		node, err := engine.Marshal(expected)
		require.NoError(t, err)
		assert.Equal(t, `<derived><Name>outer</Name><Name defined-in="base">inner</Name></derived>`, node.String())

		var actual derived
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, expected, actual)
	})
	t.Run("With a struct embedded through several paths", func(t *testing.T) {
		engine := newEngine(t)
		expected := tower{left: left{leaf{Y: 1}}, right: right{leaf{Y: 2}}, Y: 3}

		node, err := engine.Marshal(expected)
		require.NoError(t, err)
		assert.Equal(t, `<tower><Y>3</Y><Y defined-in="leaf">1</Y><Y defined-in="leaf[2]">2</Y></tower>`, node.String())

		var actual tower
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, expected, actual)

		err = engine.Unmarshal(parse(t, `<tower><Y defined-in="leaf[2]">1</Y><Y defined-in="leaf[2]">2</Y></tower>`), &actual)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrDuplicateField)
	})
	t.Run("With a duplicate member", func(t *testing.T) {
		engine := newEngine(t)

		var actual point
		err := engine.Unmarshal(parse(t, "<Point><x>1</x><x>2</x></Point>"), &actual)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrDuplicateField)
	})
	t.Run("With an unknown element", func(t *testing.T) {
		engine := newEngine(t)
		node := parse(t, "<Point><x>1</x><z>9</z></Point>")

		var actual point
		err := engine.Unmarshal(node, &actual)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrUnknownField)

		require.NoError(t, engine.IgnoreUnknownElements("^z$"))
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, point{x: 1}, actual)

		err = engine.IgnoreUnknownElements("(")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
	t.Run("With unknown attributes", func(t *testing.T) {
		engine := newEngine(t)

		var actual point
		require.NoError(t, engine.Unmarshal(parse(t, `<Point color="red"><x>1</x></Point>`), &actual))
		assert.Equal(t, point{x: 1}, actual)
	})
}

func TestEngineReferences(t *testing.T) {
	t.Run("With a cycle by path", func(t *testing.T) {
		engine := newEngine(t)
		first := &link{Name: "first"}
		first.Next = &link{Name: "second", Next: first}

		node, err := engine.Marshal(first)
		require.NoError(t, err)
		next := node.Child("Next").Child("Next")
		require.NotNil(t, next)
		reference, ok := next.Attribute("reference")
		require.True(t, ok)
		assert.Equal(t, "/_.link", reference)

		var actual *link
		require.NoError(t, engine.Unmarshal(node, &actual))
		require.NotNil(t, actual.Next)
		assert.Equal(t, "second", actual.Next.Name)
		assert.Same(t, actual, actual.Next.Next)
	})
	t.Run("With a cycle by id", func(t *testing.T) {
		engine := newEngine(t, WithReferenceMode(core.ByID))
		first := &link{Name: "first"}
		first.Next = &link{Name: "second", Next: first}

		node, err := engine.Marshal(first)
		require.NoError(t, err)
		id, ok := node.Attribute("id")
		require.True(t, ok)
		reference, _ := node.Child("Next").Child("Next").Attribute("reference")
		assert.Equal(t, id, reference)

		var actual *link
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Same(t, actual, actual.Next.Next)
	})
	t.Run("With a cycle and references disabled", func(t *testing.T) {
		engine := newEngine(t, WithReferenceMode(core.None))
		first := &link{Name: "first"}
		first.Next = first

		_, err := engine.Marshal(first)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrCircularReference)
	})
	t.Run("With a shared value", func(t *testing.T) {
		engine := newEngine(t)
		shared := &person{Name: "Ada"}
		expected := []*person{shared, shared}

		node, err := engine.Marshal(expected)
		require.NoError(t, err)

		var actual []*person
		require.NoError(t, engine.Unmarshal(node, &actual))
		require.Len(t, actual, 2)
		assert.Same(t, actual[0], actual[1])
	})
	t.Run("With a shared slice", func(t *testing.T) {
		engine := newEngine(t)
		shared := []string{"a", "b"}

		node, err := engine.Marshal(pair{A: shared, B: shared})
		require.NoError(t, err)
		_, ok := node.Child("B").Attribute("reference")
		assert.False(t, ok)

		var actual pair
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, pair{A: shared, B: shared}, actual)

		actual.A[0] = "z"
		assert.Equal(t, "a", actual.B[0])
	})
	t.Run("With an immutable type", func(t *testing.T) {
		engine := newEngine(t)
		engine.AddImmutableType(reflect.TypeOf(&person{}))
		shared := &person{Name: "Ada"}

		node, err := engine.Marshal([]*person{shared, shared})
		require.NoError(t, err)
		for _, child := range node.Children {
			_, ok := child.Attribute("reference")
			assert.False(t, ok)
		}

		var actual []*person
		require.NoError(t, engine.Unmarshal(node, &actual))
		require.Len(t, actual, 2)
		assert.NotSame(t, actual[0], actual[1])
		assert.Equal(t, actual[0], actual[1])
	})
}

func TestEngineMapping(t *testing.T) {
	t.Run("With an attribute member", func(t *testing.T) {
		engine := newEngine(t)
		require.NoError(t, engine.UseAttributeFor(reflect.TypeOf(point{}), "x"))

		node, err := engine.Marshal(point{x: 1, y: 2})
		require.NoError(t, err)
		assert.Equal(t, `<Point x="1"><y>2</y></Point>`, node.String())

		var actual point
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, point{x: 1, y: 2}, actual)
	})
	t.Run("With an attribute member named after a system attribute", func(t *testing.T) {
		engine := newEngine(t)
		require.NoError(t, engine.UseAttributeFor(reflect.TypeOf(account{}), "id"))

		_, err := engine.Marshal(account{id: 7, Name: "Ada"})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrDuplicateField)

		var actual account
		err = engine.Unmarshal(parse(t, `<account id="7"><Name>Ada</Name></account>`), &actual)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrDuplicateField)
	})
	t.Run("With an attribute member aliased to a system attribute", func(t *testing.T) {
		engine := newEngine(t)
		require.NoError(t, engine.UseAttributeFor(reflect.TypeOf(account{}), "Name"))
		require.NoError(t, engine.AliasField("class", reflect.TypeOf(account{}), "Name"))

		_, err := engine.Marshal(account{id: 7, Name: "Ada"})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrDuplicateField)
	})
	t.Run("With an attribute for an unknown member", func(t *testing.T) {
		engine := newEngine(t)
		err := engine.UseAttributeFor(reflect.TypeOf(point{}), "z")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrUnknownField)
	})
	t.Run("With a field alias", func(t *testing.T) {
		engine := newEngine(t)
		require.NoError(t, engine.AliasField("name", reflect.TypeOf(derived{}), "Name"))

		node, err := engine.Marshal(derived{base: base{Name: "inner"}, Name: "outer"})
		require.NoError(t, err)
		assert.Equal(t, `<derived><name>outer</name><Name defined-in="base">inner</Name></derived>`, node.String())

		var actual derived
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, "outer", actual.Name)
		assert.Equal(t, "inner", actual.base.Name)
	})
	t.Run("With an omitted member", func(t *testing.T) {
		engine := newEngine(t)
		require.NoError(t, engine.OmitField(reflect.TypeOf(point{}), "y"))

		node, err := engine.Marshal(point{x: 1, y: 2})
		require.NoError(t, err)
		assert.Equal(t, "<Point><x>1</x></Point>", node.String())

		var actual point
		require.NoError(t, engine.Unmarshal(parse(t, "<Point><x>1</x><y>2</y></Point>"), &actual))
		assert.Equal(t, point{x: 1}, actual)
	})
	t.Run("With an implicit collection", func(t *testing.T) {
		engine := newEngine(t)
		require.NoError(t, engine.AddImplicitCollection(reflect.TypeOf(bag{}), "Items", "", nil))

		node, err := engine.Marshal(bag{Items: []string{"a", "b"}})
		require.NoError(t, err)
		assert.Equal(t, "<bag><string>a</string><string>b</string></bag>", node.String())

		var actual bag
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, []string{"a", "b"}, actual.Items)
	})
	t.Run("With an implicit collection of named items", func(t *testing.T) {
		engine := newEngine(t)
		require.NoError(t, engine.AddImplicitCollection(reflect.TypeOf(bag{}), "Items", "item", nil))

		node, err := engine.Marshal(bag{Items: []string{"a"}})
		require.NoError(t, err)
		assert.Equal(t, "<bag><item>a</item></bag>", node.String())
	})
	t.Run("With an implicit map of entries", func(t *testing.T) {
		engine := newEngine(t)
		require.NoError(t, engine.AddImplicitMap(reflect.TypeOf(catalog{}), "Prices", "", nil, ""))
		expected := catalog{Prices: map[string]int{"b": 2, "a": 1}}

		node, err := engine.Marshal(expected)
		require.NoError(t, err)
		assert.Equal(t, "<catalog><entry><string>a</string><int>1</int></entry><entry><string>b</string><int>2</int></entry></catalog>", node.String())

		var actual catalog
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, expected, actual)
	})
	t.Run("With an implicit map keyed by a member", func(t *testing.T) {
		engine := newEngine(t)
		require.NoError(t, engine.AddImplicitMap(reflect.TypeOf(album{}), "Tracks", "track", nil, "Title"))
		expected := album{Tracks: map[string]track{
			"Blue": {Title: "Blue", Year: 1971},
			"Case": {Title: "Case", Year: 1972},
		}}

		node, err := engine.Marshal(expected)
		require.NoError(t, err)
		assert.Equal(t, "<album><track><Title>Blue</Title><Year>1971</Year></track><track><Title>Case</Title><Year>1972</Year></track></album>", node.String())

		var actual album
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, expected, actual)
	})
	t.Run("With an implicit map keyed by an unknown member", func(t *testing.T) {
		engine := newEngine(t)
		err := engine.AddImplicitMap(reflect.TypeOf(album{}), "Tracks", "track", nil, "Artist")
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
	t.Run("With an implicit array", func(t *testing.T) {
		engine := newEngine(t)
		require.NoError(t, engine.AddImplicitCollection(reflect.TypeOf(trio{}), "Items", "item", nil))

		node, err := engine.Marshal(trio{Items: [3]string{"a", "b", "c"}})
		require.NoError(t, err)
		assert.Equal(t, "<trio><item>a</item><item>b</item><item>c</item></trio>", node.String())

		var actual trio
		require.NoError(t, engine.Unmarshal(parse(t, "<trio><item>a</item><item>b</item></trio>"), &actual))
		assert.Equal(t, trio{Items: [3]string{"a", "b", ""}}, actual)

		err = engine.Unmarshal(parse(t, "<trio><item>a</item><item>b</item><item>c</item><item>d</item></trio>"), &actual)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrIncompatibleType)
	})
	t.Run("With an implicit collection embedded through several paths", func(t *testing.T) {
		engine := newEngine(t)
		require.NoError(t, engine.AddImplicitCollection(reflect.TypeOf(bag{}), "Items", "", nil))

		_, err := engine.Marshal(shelves{
			shelfLeft:  shelfLeft{bag{Items: []string{"a"}}},
			shelfRight: shelfRight{bag{Items: []string{"b"}}},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrDuplicateField)
	})
	t.Run("With an implicit collection over a scalar", func(t *testing.T) {
		engine := newEngine(t)
		err := engine.AddImplicitCollection(reflect.TypeOf(point{}), "x", "", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
	t.Run("With an interface member", func(t *testing.T) {
		engine := newEngine(t)

		node, err := engine.Marshal(holder{Shape: square{Side: 2}})
		require.NoError(t, err)
		assert.Equal(t, `<holder><Shape class="square"><Side>2</Side></Shape></holder>`, node.String())

		var actual holder
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, 4, actual.Shape.Area())
	})
	t.Run("With a default implementation", func(t *testing.T) {
		engine := newEngine(t)
		require.NoError(t, engine.AddDefaultImplementation(reflect.TypeOf(square{}), reflect.TypeOf((*shape)(nil)).Elem()))

		node, err := engine.Marshal(holder{Shape: square{Side: 3}})
		require.NoError(t, err)
		assert.Equal(t, `<holder><Shape><Side>3</Side></Shape></holder>`, node.String())

		var actual holder
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, square{Side: 3}, actual.Shape)
	})
	t.Run("With a replaced value", func(t *testing.T) {
		engine := newEngine(t)

		node, err := engine.Marshal(celsius{Degrees: 21.5})
		require.NoError(t, err)
		assert.Equal(t, `<celsius resolves-to="reading"><Value>21.5C</Value></celsius>`, node.String())

		var actual celsius
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, celsius{Degrees: 21.5}, actual)
	})
	t.Run("With an attribute alias", func(t *testing.T) {
		engine := newEngine(t)
		engine.AliasAttribute("type", "class")

		node, err := engine.Marshal(holder{Shape: square{Side: 2}})
		require.NoError(t, err)
		assert.Equal(t, `<holder><Shape type="square"><Side>2</Side></Shape></holder>`, node.String())

		var actual holder
		require.NoError(t, engine.Unmarshal(node, &actual))
		assert.Equal(t, square{Side: 2}, actual.Shape)
	})
	t.Run("With a mapper wrapper", func(t *testing.T) {
		engine := newEngine(t, WithMapperWrapper(func(m mapper.Mapper) mapper.Mapper {
			return &smuggler{Wrapper: mapper.Wrapper{Mapper: m}}
		}))

		_, ok := mapper.Find[*smuggler](engine.Mapper())
		assert.True(t, ok)
	})
}

func TestEngineSecurity(t *testing.T) {
	smuggle := WithMapperWrapper(func(m mapper.Mapper) mapper.Mapper {
		return &smuggler{Wrapper: mapper.Wrapper{Mapper: m}}
	})

	t.Run("With an unregistered type", func(t *testing.T) {
		engine := newEngine(t, smuggle)

		_, err := engine.Decode(parse(t, "<evil><Key>k</Key></evil>"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrForbiddenType)
		assert.False(t, engine.Gate().Allows(reflect.TypeOf(secret{})))
	})
	t.Run("With any type allowed", func(t *testing.T) {
		buffer := new(bytes.Buffer)
		engine := newEngine(t, smuggle, WithLogger(log.NewZap(log.WarningLevel, buffer)))
		engine.AllowAnyType()
		assert.True(t, engine.AnyTypeAllowed())
		assert.Contains(t, buffer.String(), "allows any type")

		decoded, err := engine.Decode(parse(t, "<evil><Key>k</Key></evil>"))
		require.NoError(t, err)
		assert.Equal(t, secret{Key: "k"}, decoded)

		engine.DenyAllTypes()
		assert.False(t, engine.AnyTypeAllowed())
		_, err = engine.Decode(parse(t, "<int>1</int>"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrForbiddenType)
	})
	t.Run("With an oversized array type", func(t *testing.T) {
		engine := newEngine(t)
		name := mapper.EncodeName("[1099511627776]int64")

		_, err := engine.Decode(parse(t, "<"+name+"/>"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrForbiddenType)

		var actual anyholder
		err = engine.Unmarshal(parse(t, `<anyholder><Value class="`+name+`"><int64>1</int64></Value></anyholder>`), &actual)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrForbiddenType)
	})
	t.Run("With an array size limit", func(t *testing.T) {
		engine := newEngine(t, WithMaxArraySize(8))

		decoded, err := engine.Decode(parse(t, "<"+mapper.EncodeName("[1]int64")+"><int64>7</int64></"+mapper.EncodeName("[1]int64")+">"))
		require.NoError(t, err)
		assert.Equal(t, [1]int64{7}, decoded)

		_, err = engine.Decode(parse(t, "<"+mapper.EncodeName("[2]int64")+"/>"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrForbiddenType)

		engine.SetMaxArraySize(16)
		decoded, err = engine.Decode(parse(t, "<"+mapper.EncodeName("[2]int64")+"/>"))
		require.NoError(t, err)
		assert.Equal(t, [2]int64{}, decoded)
	})
	t.Run("With an explicit allowance", func(t *testing.T) {
		engine := newEngine(t, smuggle)
		engine.AllowTypes(secret{})

		decoded, err := engine.Decode(parse(t, "<evil><Key>k</Key></evil>"))
		require.NoError(t, err)
		assert.Equal(t, secret{Key: "k"}, decoded)
	})
	t.Run("With a single type allowed", func(t *testing.T) {
		engine := newEngine(t, smuggle)
		engine.DenyAllTypes()
		engine.AllowTypes(secret{})

		decoded, err := engine.Decode(parse(t, "<evil><Key>k</Key></evil>"))
		require.NoError(t, err)
		assert.Equal(t, secret{Key: "k"}, decoded)

		_, err = engine.Decode(parse(t, "<Point><x>1</x></Point>"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrForbiddenType)
		assert.False(t, errors.Is(err, errors.ErrCannotResolveType))
	})
	t.Run("With a wildcard allowance", func(t *testing.T) {
		engine := newEngine(t, smuggle)
		engine.AllowTypesByWildcard("github.com/tochemey/arbor.*")

		_, err := engine.Decode(parse(t, "<evil><Key>k</Key></evil>"))
		require.NoError(t, err)
	})
	t.Run("With a regular expression allowance", func(t *testing.T) {
		engine := newEngine(t, smuggle)
		require.NoError(t, engine.AllowTypesByRegExp(`\.secret$`))

		_, err := engine.Decode(parse(t, "<evil><Key>k</Key></evil>"))
		require.NoError(t, err)

		err = engine.AllowTypesByRegExp("[")
		require.Error(t, err)
	})
	t.Run("With a denied type", func(t *testing.T) {
		engine := newEngine(t)
		engine.DenyTypes(point{})

		_, err := engine.Decode(parse(t, "<Point><x>1</x></Point>"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrForbiddenType)

		var actual holder
		err = engine.Unmarshal(parse(t, `<holder><Shape class="Point"></Shape></holder>`), &actual)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrForbiddenType)
	})
	t.Run("With a denied pattern", func(t *testing.T) {
		engine := newEngine(t)
		engine.DenyTypesByWildcard("**.point")
		require.NoError(t, engine.DenyTypesByRegExp(`\.square$`))

		_, err := engine.Decode(parse(t, "<Point></Point>"))
		assert.ErrorIs(t, err, errors.ErrForbiddenType)
		_, err = engine.Decode(parse(t, "<square></square>"))
		assert.ErrorIs(t, err, errors.ErrForbiddenType)
	})
	t.Run("With an incompatible class", func(t *testing.T) {
		engine := newEngine(t)

		var actual holder
		err := engine.Unmarshal(parse(t, `<holder><Shape class="Point"></Shape></holder>`), &actual)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrIncompatibleType)
	})
}

func TestEngineSettings(t *testing.T) {
	pointName := types.Name(reflect.TypeOf(point{}))

	t.Run("With settings", func(t *testing.T) {
		settings := &config.Settings{
			ReferenceMode:   config.ReferenceByID,
			Aliases:         []config.TypeAlias{{Name: "P", Type: pointName}},
			AttributeFields: []config.Member{{Type: "P", Field: "x"}},
		}

		engine, err := New(WithTypes(point{}), WithSettings(settings))
		require.NoError(t, err)
		assert.Equal(t, core.ByID, engine.ReferenceMode())

		node, err := engine.Marshal(point{x: 1, y: 2})
		require.NoError(t, err)
		assert.Equal(t, `<P x="1"><y>2</y></P>`, node.String())
	})
	t.Run("With an array size setting", func(t *testing.T) {
		settings := &config.Settings{Security: config.Security{MaxArraySize: 8}}

		engine, err := New(WithSettings(settings))
		require.NoError(t, err)

		_, err = engine.Decode(parse(t, "<"+mapper.EncodeName("[2]int64")+"/>"))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrForbiddenType)
	})
	t.Run("With a field order setting", func(t *testing.T) {
		settings := &config.Settings{
			FieldSorter: config.SorterAlphabetical,
			Aliases:     []config.TypeAlias{{Name: "P", Type: pointName}},
			FieldOrders: []config.FieldOrder{{Type: "P", Fields: []string{"y", "x"}}},
		}

		engine, err := New(WithTypes(point{}), WithSettings(settings), WithReferenceMode(core.None))
		require.NoError(t, err)
		assert.Equal(t, core.None, engine.ReferenceMode())

		node, err := engine.Marshal(point{x: 1, y: 2})
		require.NoError(t, err)
		assert.Equal(t, `<P><y>2</y><x>1</x></P>`, node.String())
	})
	t.Run("With an unknown type in settings", func(t *testing.T) {
		settings := &config.Settings{
			Aliases:       []config.TypeAlias{{Name: "P", Type: "nowhere.Nothing"}},
			OmittedFields: []config.Member{{Type: "nowhere.Other", Field: "x"}},
		}

		_, err := New(WithSettings(settings))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
	t.Run("With invalid settings", func(t *testing.T) {
		_, err := New(WithSettings(&config.Settings{ReferenceMode: "sometimes"}))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
	t.Run("With a settings file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "arbor.yaml")
		content := fmt.Sprintf(`
reference_mode: none
aliases:
  - name: P
    type: %s
omitted_fields:
  - type: P
    field: "y"
`, pointName)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		engine, err := New(WithTypes(reflect.TypeOf(point{})), WithConfigFile(path))
		require.NoError(t, err)
		assert.Equal(t, core.None, engine.ReferenceMode())

		node, err := engine.Marshal(point{x: 1, y: 2})
		require.NoError(t, err)
		assert.Equal(t, `<P><x>1</x></P>`, node.String())
	})
	t.Run("With a missing settings file", func(t *testing.T) {
		_, err := New(WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml")))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig)
	})
}

func TestEngineCodecs(t *testing.T) {
	engine := newEngine(t, WithMeterProvider(noop.NewMeterProvider()))
	codecs := []document.Codec{
		document.NewXML(""),
		document.NewJSON(""),
		document.NewCBOR(),
		document.NewMsgPack(),
		document.Compressed(document.NewJSON(""), document.NewGzip(-1)),
		document.Compressed(document.NewCBOR(), document.NewGzip(9)),
		document.Compressed(document.NewXML(""), document.NewBrotli(5)),
	}

	expected := person{Name: "Alan", Age: 41, Tags: []string{"math"}, Friend: &person{Name: "Ada"}}
	for _, codec := range codecs {
		t.Run(codec.Name(), func(t *testing.T) {
			data, err := engine.MarshalBytes(expected, codec)
			require.NoError(t, err)

			var actual person
			require.NoError(t, engine.UnmarshalBytes(data, codec, &actual))
			assert.Equal(t, expected, actual)
		})
	}

	t.Run("With a value that cannot be written", func(t *testing.T) {
		_, err := engine.MarshalBytes(func() {}, document.NewJSON(""))
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrNoConverter)
	})
	t.Run("With garbage", func(t *testing.T) {
		var actual person
		require.Error(t, engine.UnmarshalBytes([]byte("garbage"), document.NewCBOR(), &actual))
	})
}

func TestEngineConcurrency(t *testing.T) {
	engine := newEngine(t)
	group := new(errgroup.Group)
	for i := range 32 {
		group.Go(func() error {
			expected := person{Name: fmt.Sprintf("p%d", i), Age: i, Friend: &person{Name: "f"}}
			node, err := engine.Marshal(expected)
			if err != nil {
				return err
			}

			var actual person
			if err := engine.Unmarshal(node, &actual); err != nil {
				return err
			}

			if actual.Name != expected.Name || actual.Age != expected.Age {
				return fmt.Errorf("got %s/%d, want %s/%d", actual.Name, actual.Age, expected.Name, expected.Age)
			}
			return nil
		})
	}
	require.NoError(t, group.Wait())
}
