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

package arbor_test

import (
	"fmt"
	"reflect"

	"github.com/tochemey/arbor"
)

type Point struct {
	X, Y int
}

type Polygon struct {
	Name   string
	Points []*Point
}

func Example() {
	engine, err := arbor.New()
	if err != nil {
		panic(err)
	}
	engine.Alias("Point", Point{})

	node, err := engine.Marshal(Point{X: 1, Y: 2})
	if err != nil {
		panic(err)
	}
	fmt.Println(node)

	var point Point
	if err := engine.Unmarshal(node, &point); err != nil {
		panic(err)
	}
	fmt.Println(point.X, point.Y)
	// Output:
	// <Point><X>1</X><Y>2</Y></Point>
	// 1 2
}

func ExampleEngine_AddImplicitCollection() {
	engine, err := arbor.New()
	if err != nil {
		panic(err)
	}
	engine.Alias("point", Point{})
	engine.Alias("polygon", Polygon{})
	if err := engine.UseAttributeFor(reflect.TypeOf(Polygon{}), "Name"); err != nil {
		panic(err)
	}
	if err := engine.AddImplicitCollection(reflect.TypeOf(Polygon{}), "Points", "point", nil); err != nil {
		panic(err)
	}

	origin := &Point{}
	node, err := engine.Marshal(Polygon{Name: "line", Points: []*Point{origin, {X: 3, Y: 4}, origin}})
	if err != nil {
		panic(err)
	}
	fmt.Println(node)
	// Output:
	// <polygon Name="line"><point><X>0</X><Y>0</Y></point><point><X>3</X><Y>4</Y></point><point reference="/polygon/point"></point></polygon>
}
