package testutil

import "github.com/roach88/lowerc/internal/ir"

// Common type names.
const (
	Object    = "java.lang.Object"
	String    = "java.lang.String"
	StringArr = "java.lang.String[]"
)

// MainParams is the parameter list of an entry point.
var MainParams = []string{StringArr}

// ZooProgram is a small hierarchy exercising dispatch:
//
//	app.Animal            legs:int, <init>, speak(), legs()
//	  app.Cat             <init>, speak()
//	  app.Dog             <init>, speak()
//	app.Main              main(String[]), talk(Animal)
//
// app.Main.talk calls speak() on its parameter. main creates one Cat and
// one Dog and passes both to talk. With catOnly, the program also carries
// a points-to fact proving talk only ever sees a Cat.
func ZooProgram(catOnly bool) *ir.Program {
	b := NewProgram()

	animal := b.Class("app.Animal", Object).Source("app/Animal.java").Field("legs", "int")
	ctor(animal, Object)
	animal.Method("speak", nil, "void").
		Local("this", "app.Animal").
		Units(Identity("this", This("app.Animal")), ReturnVoid())
	animal.Method("legs", nil, "int").
		Local("this", "app.Animal").
		Local("i0", "int").
		Units(
			Identity("this", This("app.Animal")),
			Assign(Local("i0"), Field(Local("this"), "app.Animal", "legs", "int")),
			Return(Local("i0")),
		)

	for _, name := range []string{"app.Cat", "app.Dog"} {
		c := b.Class(name, "app.Animal")
		ctor(c, "app.Animal")
		c.Method("speak", nil, "void").
			Local("this", name).
			Units(Identity("this", This(name)), ReturnVoid())
	}

	main := b.Class("app.Main", Object).Source("app/Main.java")
	main.StaticMethod("main", MainParams, "void").
		Local("args", StringArr).
		Local("r1", "app.Cat").
		Local("r2", "app.Dog").
		Units(
			Identity("args", Param(0, StringArr)),
			Assign(Local("r1"), New("app.Cat")),
			Invoke(Special(Local("r1"), "app.Cat", "<init>", nil, "void")),
			Invoke(Static("app.Main", "talk", []string{"app.Animal"}, "void", Local("r1"))),
			Assign(Local("r2"), New("app.Dog")),
			Invoke(Special(Local("r2"), "app.Dog", "<init>", nil, "void")),
			Invoke(Static("app.Main", "talk", []string{"app.Animal"}, "void", Local("r2"))),
			ReturnVoid(),
		)
	main.StaticMethod("talk", []string{"app.Animal"}, "void").
		Local("a", "app.Animal").
		Units(
			Identity("a", Param(0, "app.Animal")),
			Invoke(Virtual(Local("a"), "app.Animal", "speak", nil, "void")),
			ReturnVoid(),
		)

	if catOnly {
		b.PointsTo(ir.MethodKey("app.Main", "talk", []string{"app.Animal"}), "a", "app.Cat")
	}
	return b.Build()
}

// ctor adds a constructor chaining to super's.
func ctor(c *ClassBuilder, super string) {
	self := c.decl().Name
	c.Method("<init>", nil, "void").
		Local("this", self).
		Units(
			Identity("this", This(self)),
			Invoke(Special(Local("this"), super, "<init>", nil, "void")),
			ReturnVoid(),
		)
}

// ShapesProgram has one interface with two implementors and a static
// method calling through the interface:
//
//	app.Shape (interface)   area()
//	app.Square  implements  area()
//	app.Circle  implements  area()
//	app.Geo                 total(Shape)
func ShapesProgram() *ir.Program {
	b := NewProgram()
	b.Interface("app.Shape").AbstractMethod("area", nil, "int")
	for _, name := range []string{"app.Square", "app.Circle"} {
		c := b.Class(name, Object).Implements("app.Shape")
		ctor(c, Object)
		c.Method("area", nil, "int").
			Local("this", name).
			Units(Identity("this", This(name)), Return(Const("4", "int")))
	}
	b.Class("app.Geo", Object).
		StaticMethod("total", []string{"app.Shape"}, "int").
		Local("s", "app.Shape").
		Local("i0", "int").
		Units(
			Identity("s", Param(0, "app.Shape")),
			Assign(Local("i0"), Interface(Local("s"), "app.Shape", "area", nil, "int")),
			Return(Local("i0")),
		)
	return b.Build()
}
