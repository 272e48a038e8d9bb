// Package codegen lowers the semantic model to C.
//
// A Generator is bound to one session. Translate registers a requested
// class and drains the reachability worklist: every method the requested
// classes can reach, directly, devirtualized or through a dispatch table,
// is lowered exactly once. Units renders the emitted classes; after
// PostTranslationWork it also carries the program units and the fixed
// runtime unit.
//
// Object-model emulation:
//
//	instance layout     struct X { RJava_Common_Instance instance_header; fields... }
//	class descriptor    struct X_class { RJava_Common_Class class_header; fn pointers... }
//	virtual call        ((Decl_class*)(((RJava_Common_Instance*) b) -> class_struct)) -> m(b, ...)
//	interface call      ((I_itable*) rjava_get_interface(<interface list>, "I")) -> m(b, ...)
//	devirtualized call  Impl_m(b, ...)
package codegen
