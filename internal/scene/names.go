package scene

import "fmt"

// Derived GLSL identifiers.

func UniformName(name string) string { return name + "_u" }

func MatrixName(name string) string { return name + "_mat" }

func InverseMatrixName(name string) string { return name + "_mat_inv" }

// TeleportName is the matrix carrying a ray from portal side a to side b.
func TeleportName(a, b string) string { return a + "_to_" + b + "_mat" }

func TextureName(name string) string { return name + "_tex" }

func MaterialDefine(name string) string { return name + "_M" }

// TeleportMaterialDefine names the material of portal side (1 or 2) of the object at pos.
func TeleportMaterialDefine(pos, side int) string {
	return fmt.Sprintf("teleport_%d_%d_M", pos, side)
}
