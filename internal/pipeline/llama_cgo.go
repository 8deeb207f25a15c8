//go:build llama

package pipeline

// cgo link directives for the in-process llama adapter.
// - rpath of $ORIGIN so libllama.so next to the binary (./bin) is found at run time.
// - -L${SRCDIR}/../../bin so the linker finds libllama.so when building with -tags=llama.
/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../bin -lllama
*/
import "C"
