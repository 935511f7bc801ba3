package model

// Path represents a file system path.
type Path string

// PythonFileExtension is the source-file extension this tool processes.
const PythonFileExtension = ".py"

// File represents a source code file.
type File struct {
	Path Path
	Hash string
}
