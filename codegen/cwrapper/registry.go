// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cwrapper

import (
	"fmt"

	"github.com/dina-fouad/pyccel/ast/datatypes"
	"github.com/pkg/errors"
)

// Flag is the 4-bit dispatch code of one concrete (kind, precision)
// pair. Flags are unique per pair, process wide.
type Flag uint8

// Key is a packed dispatch key: the flags of a signature's parameters
// folded left to right, four bits per parameter.
type Key uint64

// maxKeyArity is the number of parameters a 64-bit key can hold.
const maxKeyArity = 16

// Fold shifts the key left by four bits and adds the next flag.
func (k Key) Fold(f Flag) Key {
	return k<<4 | Key(f)
}

// String representation of the key, in hexadecimal.
func (k Key) String() string {
	return fmt.Sprintf("%#x", uint64(k))
}

// typeEntry is the registry record of one concrete scalar type: its
// dispatch flag and the names the boundary layer uses for it.
type typeEntry struct {
	flag Flag
	// pythonToC converts a PyObject to the native value.
	pythonToC string
	// cToPython converts the address of a native value to a new PyObject.
	cToPython string
	// scalarCheck tests that a PyObject holds a compatible scalar.
	scalarCheck string
	// numpyEnum is the NumPy dtype enumerator of the element type.
	numpyEnum string
	// cDecl is the C declaration keyword.
	cDecl string
	// synthesized marks types whose helpers are not part of the
	// boundary library and must be generated into the module.
	synthesized bool
}

// typeRegistry is the process-wide table of every concrete scalar type
// the boundary layer supports. It is read-only after initialisation.
//
// The flag assignment packs each concrete type into four bits:
// bool and string first, then the integer widths from 3, the real
// widths from 10 and the complex widths from 13.
var typeRegistry = map[datatypes.Type]typeEntry{
	datatypes.BoolType: {
		flag:        1,
		pythonToC:   "PyBool_to_Bool",
		cToPython:   "Bool_to_PyBool",
		scalarCheck: "PyIs_Bool",
		numpyEnum:   "NPY_BOOL",
		cDecl:       "bool",
	},
	datatypes.StringType: {
		flag: 2,
	},
	datatypes.Int8Type: {
		flag:        3,
		pythonToC:   "PyInt8_to_Int8",
		cToPython:   "Int8_to_PyInt8",
		scalarCheck: "PyIs_Int8",
		numpyEnum:   "NPY_INT8",
		cDecl:       "int8_t",
	},
	datatypes.Int16Type: {
		flag:        4,
		pythonToC:   "PyInt16_to_Int16",
		cToPython:   "Int16_to_PyInt16",
		scalarCheck: "PyIs_Int16",
		numpyEnum:   "NPY_INT16",
		cDecl:       "int16_t",
	},
	datatypes.Int32Type: {
		flag:        5,
		pythonToC:   "PyInt32_to_Int32",
		cToPython:   "Int32_to_PyInt32",
		scalarCheck: "PyIs_Int32",
		numpyEnum:   "NPY_INT32",
		cDecl:       "int32_t",
	},
	datatypes.Int64Type: {
		flag:        6,
		pythonToC:   "PyInt64_to_Int64",
		cToPython:   "Int64_to_PyInt64",
		scalarCheck: "PyIs_Int64",
		numpyEnum:   "NPY_INT64",
		cDecl:       "int64_t",
	},
	datatypes.Real32Type: {
		flag:        10,
		pythonToC:   "PyFloat_to_Float",
		cToPython:   "Float_to_PyFloat",
		scalarCheck: "PyIs_Float",
		numpyEnum:   "NPY_FLOAT",
		cDecl:       "float",
	},
	datatypes.Real64Type: {
		flag:        11,
		pythonToC:   "PyDouble_to_Double",
		cToPython:   "Double_to_PyDouble",
		scalarCheck: "PyIs_Double",
		numpyEnum:   "NPY_DOUBLE",
		cDecl:       "double",
	},
	datatypes.Real80Type: {
		flag:        12,
		pythonToC:   "PyLongDouble_to_LongDouble",
		cToPython:   "LongDouble_to_PyLongDouble",
		scalarCheck: "PyIs_LongDouble",
		numpyEnum:   "NPY_LONGDOUBLE",
		cDecl:       "long double",
		synthesized: true,
	},
	datatypes.Complex64Type: {
		flag:        13,
		pythonToC:   "PyComplex_to_Complex64",
		cToPython:   "Complex64_to_PyComplex",
		scalarCheck: "PyIs_Complex64",
		numpyEnum:   "NPY_CFLOAT",
		cDecl:       "float complex",
	},
	datatypes.Complex128Type: {
		flag:        14,
		pythonToC:   "PyComplex_to_Complex128",
		cToPython:   "Complex128_to_PyComplex",
		scalarCheck: "PyIs_Complex128",
		numpyEnum:   "NPY_CDOUBLE",
		cDecl:       "double complex",
	},
	datatypes.Complex160Type: {
		flag:        15,
		pythonToC:   "PyComplex_to_Complex160",
		cToPython:   "Complex160_to_PyComplex",
		scalarCheck: "PyIs_Complex160",
		numpyEnum:   "NPY_CLONGDOUBLE",
		cDecl:       "long double complex",
		synthesized: true,
	},
}

func findEntry(typ datatypes.Type) (typeEntry, error) {
	entry, ok := typeRegistry[typ]
	if !ok {
		return typeEntry{}, errors.Errorf("type %s cannot cross the python boundary", typ)
	}
	return entry, nil
}

// DispatchFlag returns the 4-bit dispatch code of a concrete type.
func DispatchFlag(typ datatypes.Type) (Flag, error) {
	entry, err := findEntry(typ)
	if err != nil {
		return 0, err
	}
	return entry.flag, nil
}

func marshalEntry(typ datatypes.Type) (typeEntry, error) {
	entry, err := findEntry(typ)
	if err != nil {
		return typeEntry{}, err
	}
	if entry.pythonToC == "" {
		return typeEntry{}, errors.Errorf("type %s has no boundary cast functions", typ)
	}
	return entry, nil
}

// synthesizedHelpers holds the source of the boundary helpers that are
// not part of the boundary library. They are emitted into the module,
// on demand, by the generation context.
var synthesizedHelpers = map[string]string{
	"PyIs_LongDouble": `static bool PyIs_LongDouble(PyObject *o)
{
	return PyArray_IsScalar(o, LongDouble);
}`,
	"PyLongDouble_to_LongDouble": `static long double PyLongDouble_to_LongDouble(PyObject *o)
{
	long double v;
	PyArray_ScalarAsCtype(o, &v);
	return v;
}`,
	"LongDouble_to_PyLongDouble": `static PyObject *LongDouble_to_PyLongDouble(long double *v)
{
	return PyArray_Scalar(v, PyArray_DescrFromType(NPY_LONGDOUBLE), NULL);
}`,
	"PyIs_Complex160": `static bool PyIs_Complex160(PyObject *o)
{
	return PyArray_IsScalar(o, CLongDouble);
}`,
	"PyComplex_to_Complex160": `static long double complex PyComplex_to_Complex160(PyObject *o)
{
	long double complex v;
	PyArray_ScalarAsCtype(o, &v);
	return v;
}`,
	"Complex160_to_PyComplex": `static PyObject *Complex160_to_PyComplex(long double complex *v)
{
	return PyArray_Scalar(v, PyArray_DescrFromType(NPY_CLONGDOUBLE), NULL);
}`,
}
