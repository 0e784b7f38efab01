package opc

import (
	"path"
	"strings"
)

// ResolveTarget resolves a relationship target against the directory of
// its source part. Absolute targets (leading slash) are taken as-is with
// the slash stripped; relative targets are joined to baseDir and
// normalized ("." and ".." segments collapsed).
//
// External-mode targets must never be passed here; they are not part
// names.
func ResolveTarget(baseDir, target string) string {
	if strings.HasPrefix(target, "/") {
		return target[1:]
	}
	return path.Clean(path.Join(baseDir, target))
}

// RelativeTarget computes the relationship target string that points from
// sourcePart's directory to targetPart, using "../" segments where the
// two diverge. Both arguments are normalized part names.
func RelativeTarget(sourcePart, targetPart string) string {
	sourceDir := path.Dir(NormalizePartName(sourcePart))
	target := NormalizePartName(targetPart)

	if sourceDir == "." {
		return target
	}

	srcSegs := strings.Split(sourceDir, "/")
	tgtSegs := strings.Split(target, "/")

	common := 0
	for common < len(srcSegs) && common < len(tgtSegs)-1 && srcSegs[common] == tgtSegs[common] {
		common++
	}

	var out []string
	for i := common; i < len(srcSegs); i++ {
		out = append(out, "..")
	}
	out = append(out, tgtSegs[common:]...)
	return strings.Join(out, "/")
}
