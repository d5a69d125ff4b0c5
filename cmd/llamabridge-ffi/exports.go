package main

/*
#include <stdint.h>
#include <stdlib.h>

enum {
	LLAMABRIDGE_OK = 0,
	LLAMABRIDGE_EMPTY = 1,
	LLAMABRIDGE_INVALID_HANDLE = -1,
	LLAMABRIDGE_DESTROYED = -2,
	LLAMABRIDGE_TOKENIZE_FAILED = -3,
	LLAMABRIDGE_PROMPT_TOO_LONG = -4,
	LLAMABRIDGE_DECODE_FAILED = -5,
	LLAMABRIDGE_ERROR = -99
};
*/
import "C"

import (
	"context"
	"unsafe"

	"github.com/expki/llamabridge"
)

//export llamabridge_create
func llamabridge_create(path *C.char) (h C.int64_t) {
	defer recoverExport("create", func() { h = C.int64_t(llamabridge.InvalidHandle) })

	handle, err := registry().Create(C.GoString(path))
	if err != nil {
		return C.int64_t(llamabridge.InvalidHandle)
	}
	return C.int64_t(handle)
}

//export llamabridge_generate
func llamabridge_generate(h C.int64_t, prompt *C.char) (out *C.char) {
	defer recoverExport("generate", func() { out = C.CString("") })

	res, err := registry().Generate(context.Background(), llamabridge.Handle(h), C.GoString(prompt))
	return C.CString(legacyText(res, err))
}

//export llamabridge_generate_result
func llamabridge_generate_result(h C.int64_t, prompt *C.char, out **C.char) (status C.int) {
	defer recoverExport("generate_result", func() { status = C.LLAMABRIDGE_ERROR })

	res, err := registry().Generate(context.Background(), llamabridge.Handle(h), C.GoString(prompt))
	code := statusOf(res, err)
	if code == statusOK && out != nil {
		*out = C.CString(res.Text)
	}
	return C.int(code)
}

//export llamabridge_destroy
func llamabridge_destroy(h C.int64_t) {
	defer recoverExport("destroy", nil)

	if err := registry().Destroy(llamabridge.Handle(h)); err != nil {
		log.WithField("handle", int64(h)).WithError(err).Debug("destroy")
	}
}

//export llamabridge_string_free
func llamabridge_string_free(s *C.char) {
	C.free(unsafe.Pointer(s))
}

func main() {}
