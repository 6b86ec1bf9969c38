package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	globalConfig "github.com/adlytic/meta-ads-mcp/config"
	"github.com/adlytic/meta-ads-mcp/ui/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start Meta Ads Library MCP server using SSE",
	Long:  `Start a Meta Ads Library MCP (Model Context Protocol) server using Server-Sent Events (SSE) transport. This allows AI agents to search ads, analyze creatives and query the media cache through a standardized protocol.`,
	Run:   mcpServer,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&globalConfig.McpPort, "port", "8080", "Port for the SSE MCP server")
	mcpCmd.Flags().StringVar(&globalConfig.McpHost, "host", "localhost", "Host for the SSE MCP server")
}

func mcpServer(_ *cobra.Command, _ []string) {
	// Create MCP server with capabilities
	mcpServer := server.NewMCPServer(
		"Meta Ads Library MCP Server",
		globalConfig.AppVersion,
		server.WithToolCapabilities(true),
	)

	// Add all ad library and media tools
	adLibraryHandler := mcp.InitMcpAdLibrary(adLibraryUsecase)
	adLibraryHandler.AddAdLibraryTools(mcpServer)

	mediaHandler := mcp.InitMcpMedia(mediaUsecase)
	mediaHandler.AddMediaTools(mcpServer)

	// Create SSE server
	sseServer := server.NewSSEServer(
		mcpServer,
		server.WithBaseURL(fmt.Sprintf("http://%s:%s", globalConfig.McpHost, globalConfig.McpPort)),
		server.WithKeepAlive(true),
	)

	// Start the SSE server
	addr := fmt.Sprintf("%s:%s", globalConfig.McpHost, globalConfig.McpPort)
	logrus.Printf("Starting Meta Ads Library MCP SSE server on %s", addr)
	logrus.Printf("SSE endpoint: http://%s:%s/sse", globalConfig.McpHost, globalConfig.McpPort)
	logrus.Printf("Message endpoint: http://%s:%s/message", globalConfig.McpHost, globalConfig.McpPort)

	// Graceful shutdown handler
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		logrus.Info("[MCP] Reception of termination signal, shutting down gracefully...")
		StopApp()
		os.Exit(0)
	}()

	if err := sseServer.Start(addr); err != nil {
		logrus.Fatalf("Failed to start SSE server: %v", err)
	}
}
