/*
   Copyright 2026 The skiros-go Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package param

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skiros2/skiros-go/skierr"
)

func TestHandler_AddSpecifyGet(t *testing.T) {
	cases := []struct {
		name string
		run  func(t *testing.T, h *Handler)
	}{
		{
			name: "specify overwrites silently",
			run: func(t *testing.T, h *Handler) {
				h.AddParam("Target", nil, Required)
				require.NoError(t, h.Specify("Target", "a"))
				require.NoError(t, h.Specify("Target", "b"))
				v, err := h.GetParamValue("Target")
				require.NoError(t, err)
				require.Equal(t, "b", v)
			},
		},
		{
			name: "unknown key raises UnknownParamError wrapping skierr.ErrUnknownParam",
			run: func(t *testing.T, h *Handler) {
				err := h.Specify("Nope", 1)
				var upe *UnknownParamError
				require.True(t, errors.As(err, &upe))
				require.Equal(t, "Nope", upe.Key)
				require.ErrorIs(t, err, skierr.ErrUnknownParam)
			},
		},
		{
			name: "required param starts unspecified",
			run: func(t *testing.T, h *Handler) {
				h.AddParam("Target", nil, Required)
				p, err := h.GetParam("Target")
				require.NoError(t, err)
				require.False(t, p.Specified)
				require.Equal(t, Required, p.Type)
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			c.run(t, NewHandler())
		})
	}
}

func TestHandler_Remap(t *testing.T) {
	h := NewHandler()
	h.AddParam("A", 1, Required)
	h.AddParam("B", 2, Optional)
	require.NoError(t, h.Remap("A", "C"))
	require.False(t, h.HasParam("A"))
	require.True(t, h.HasParam("C"))
	require.Equal(t, []string{"C", "B"}, h.Keys())

	v, err := h.GetParamValue("C")
	require.NoError(t, err)
	require.Equal(t, 1, v)

	err = h.Remap("Z", "Y")
	var upe *UnknownParamError
	require.True(t, errors.As(err, &upe))
	require.ErrorIs(t, err, skierr.ErrUnknownParam)
}

func TestHandler_CopyIsIndependent(t *testing.T) {
	h := NewHandler()
	h.AddParam("A", "orig", Required)
	cp := h.Copy()
	require.NoError(t, cp.Specify("A", "changed"))

	v, err := h.GetParamValue("A")
	require.NoError(t, err)
	require.Equal(t, "orig", v, "copy must not alias the source handler's parameter value")

	cv, err := cp.GetParamValue("A")
	require.NoError(t, err)
	require.Equal(t, "changed", cv)
}

func TestHandler_PrintStateOrderIsDeterministic(t *testing.T) {
	h := NewHandler()
	h.AddParam("Z", 1, Required)
	h.AddParam("A", 2, Optional)
	require.Equal(t, []string{"Z", "A"}, h.Keys(), "declaration order must be preserved, not sorted")
	require.Equal(t, "Z(Required)=1[specified=false] A(Optional)=2[specified=false] ", h.PrintState())
}
