// Package imagesource supplies the frames GVSP-S streams: a built-in
// test-pattern generator, plus thin stdlib-image-backed providers over
// a single file or a folder of files, all cycling on end. Video-file
// and OpenCV-based sourcing are treated as external collaborators and
// are not implemented here.
package imagesource
