// Package harness runs translation scenarios.
//
// A scenario is a YAML file naming a front-end program dump, optional
// translator options and a list of assertions on the session outcome:
//
//	name: devirtualized-call
//	description: a unique points-to fact turns a virtual call into a direct one
//	program: ../programs/zoo.cue
//	classes: [app.Main]
//	options:
//	  devirtualize: true
//	assertions:
//	  - type: unit_contains
//	    unit: app_Main.c
//	    text: "app_Cat_speak(a)"
//
// Every scenario runs in a fresh session with a fixed session ID and a
// deterministic clock, and its report is recorded in an in-memory ledger,
// so repeated runs produce identical results and golden snapshots.
package harness
