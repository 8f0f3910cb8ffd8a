package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerFileTools() {
	s.mcp.AddTool(mcp.NewTool("read_file",
		mcp.WithDescription("Read a file. Text files are sliced by line range; images and undecodable files come back base64-encoded."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the file to read")),
		mcp.WithNumber("offset", mcp.Description("Starting line number for text reads (default 0)")),
		mcp.WithNumber("length", mcp.Description("Maximum number of lines to read (default: max_read_length config)")),
		mcp.WithBoolean("read_all", mcp.Description("Read the whole file, ignoring offset and length")),
	), s.handleReadFile)

	s.mcp.AddTool(mcp.NewTool("write_file",
		mcp.WithDescription("Write UTF-8 content to a file, overwriting or appending."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to the file to write")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Content to write")),
		mcp.WithString("mode", mcp.Description("'rewrite' (default) or 'append'"), mcp.Enum("rewrite", "append")),
	), s.handleWriteFile)

	s.mcp.AddTool(mcp.NewTool("move_file",
		mcp.WithDescription("Move or rename a file. An existing destination is overwritten."),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source path")),
		mcp.WithString("destination", mcp.Required(), mcp.Description("Destination path")),
	), s.handleMoveFile)

	s.mcp.AddTool(mcp.NewTool("delete_file",
		mcp.WithDescription("Delete a file."),
		mcp.WithString("file_path", mcp.Required(), mcp.Description("Path to the file to delete")),
	), s.handleDeleteFile)

	s.mcp.AddTool(mcp.NewTool("list_files",
		mcp.WithDescription("List the entries of a directory with size and modification time."),
		mcp.WithString("directory", mcp.Required(), mcp.Description("Directory to list")),
	), s.handleListFiles)

	s.mcp.AddTool(mcp.NewTool("create_directory",
		mcp.WithDescription("Create a directory tree, idempotently."),
		mcp.WithString("directory", mcp.Required(), mcp.Description("Directory to create")),
	), s.handleCreateDirectory)
}

func (s *Server) handleReadFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	offset := req.GetInt("offset", 0)
	length := req.GetInt("length", 0)
	readAll := req.GetBool("read_all", false)

	res, err := s.ops.Read(path, offset, length, readAll)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res.IsImage {
		return mcp.NewToolResultImage(res.Path, res.Content, res.MimeType), nil
	}
	return jsonResult(res)
}

func (s *Server) handleWriteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	mode := req.GetString("mode", "rewrite")

	if err := s.ops.Write(path, content, mode); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(true)
}

func (s *Server) handleMoveFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dest, err := req.RequireString("destination")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.ops.Move(src, dest); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(true)
}

func (s *Server) handleDeleteFile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("file_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.ops.Delete(path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(true)
}

func (s *Server) handleListFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("directory")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	entries, err := s.ops.List(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(entries)
}

func (s *Server) handleCreateDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("directory")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.ops.CreateDirectory(dir); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(true)
}
