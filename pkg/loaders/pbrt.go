package loaders

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-cpu-raytracer/pkg/core"
)

// PBRTStatement represents a parsed PBRT statement
type PBRTStatement struct {
	Type          string               // Statement type (Camera, Material, Shape, etc.)
	Subtype       string               // Subtype (perspective, diffuse, sphere, etc.)
	Parameters    map[string]PBRTParam // Named parameters
	MaterialIndex int                  // For shapes: index of material to use (-1 = no material)
	Offset        core.Vec3            // For shapes and lights: accumulated Translate
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, rgb, point3, etc.)
	Values []string // Parameter values as strings
}

// PBRTScene contains the parsed subset of a PBRT scene this renderer understands
type PBRTScene struct {
	// Pre-WorldBegin statements
	Camera   *PBRTStatement
	LookAt   *core.Vec3 // Eye position
	LookAtTo *core.Vec3 // Look at target
	LookAtUp *core.Vec3 // Up vector

	// World content (inside WorldBegin/WorldEnd)
	Materials    []PBRTStatement
	Shapes       []PBRTStatement
	LightSources []PBRTStatement
}

// GraphicsState represents the current graphics state (for AttributeBegin/AttributeEnd stack)
type GraphicsState struct {
	MaterialIndex int       // Current material index
	Translation   core.Vec3 // Current accumulated translation
}

// PBRTParser encapsulates the state and logic for parsing PBRT files
type PBRTParser struct {
	scene          *PBRTScene
	state          GraphicsState
	stateStack     []GraphicsState
	inWorld        bool
	statementLines []string
}

// ParsePBRT parses PBRT content from an io.Reader
func ParsePBRT(reader io.Reader) (*PBRTScene, error) {
	parser := NewPBRTParser()

	// Process each line
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	// Process any remaining accumulated statements
	if err := parser.finalize(); err != nil {
		return nil, err
	}

	return parser.scene, nil
}

// LoadPBRT loads and parses a PBRT scene file
func LoadPBRT(filename string) (*PBRTScene, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PBRT file: %w", err)
	}
	defer file.Close()

	return ParsePBRT(file)
}

// NewPBRTParser creates a new PBRT parser instance
func NewPBRTParser() *PBRTParser {
	return &PBRTParser{
		scene: &PBRTScene{
			Materials:    make([]PBRTStatement, 0),
			Shapes:       make([]PBRTStatement, 0),
			LightSources: make([]PBRTStatement, 0),
		},
		state:      GraphicsState{MaterialIndex: -1},
		stateStack: make([]GraphicsState, 0),
	}
}

// processAccumulatedStatement processes any accumulated statement lines and clears them
func (p *PBRTParser) processAccumulatedStatement(context string) error {
	if len(p.statementLines) == 0 {
		return nil
	}

	fullStatement := strings.Join(p.statementLines, " ")
	p.statementLines = nil

	stmt, err := parseStatement(fullStatement)
	if err != nil {
		return fmt.Errorf("error parsing statement %s '%s': %w", context, fullStatement, err)
	}
	return p.routeStatement(stmt)
}

// processLine processes a single line of PBRT input
func (p *PBRTParser) processLine(line string) error {
	line = strings.TrimSpace(line)

	// Skip empty lines and comments
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}

	// Handle block directives
	switch line {
	case "WorldBegin":
		if err := p.processAccumulatedStatement("before WorldBegin"); err != nil {
			return err
		}
		p.inWorld = true
		// The camera transform does not carry into the world
		p.state.Translation = core.Vec3{}
		return nil
	case "WorldEnd":
		if err := p.processAccumulatedStatement("before WorldEnd"); err != nil {
			return err
		}
		p.inWorld = false
		return nil
	case "AttributeBegin":
		if err := p.processAccumulatedStatement("before AttributeBegin"); err != nil {
			return err
		}
		p.stateStack = append(p.stateStack, p.state)
		return nil
	case "AttributeEnd":
		if err := p.processAccumulatedStatement("before AttributeEnd"); err != nil {
			return err
		}
		if len(p.stateStack) == 0 {
			return fmt.Errorf("AttributeEnd without matching AttributeBegin")
		}
		p.state = p.stateStack[len(p.stateStack)-1]
		p.stateStack = p.stateStack[:len(p.stateStack)-1]
		return nil
	}

	// Check if this line starts a new statement or continues the previous one
	if isStatementStart(line) {
		if err := p.processAccumulatedStatement(""); err != nil {
			return err
		}
		p.statementLines = []string{line}
		return nil
	}

	if len(p.statementLines) == 0 {
		return fmt.Errorf("unexpected continuation line: %s", line)
	}
	p.statementLines = append(p.statementLines, line)
	return nil
}

// finalize processes any remaining accumulated statements
func (p *PBRTParser) finalize() error {
	if err := p.processAccumulatedStatement("at end of file"); err != nil {
		return err
	}
	if len(p.stateStack) > 0 {
		return fmt.Errorf("%d unclosed AttributeBegin blocks", len(p.stateStack))
	}
	return nil
}

// routeStatement routes a parsed statement to the appropriate section of the scene
func (p *PBRTParser) routeStatement(stmt *PBRTStatement) error {
	switch stmt.Type {
	case "LookAt":
		if err := parseLookAt(stmt, p.scene); err != nil {
			return fmt.Errorf("error parsing LookAt: %w", err)
		}
		return nil
	case "Translate":
		offset, err := parseVec3(stmt.Parameters["values"].Values)
		if err != nil {
			return fmt.Errorf("error parsing Translate: %w", err)
		}
		p.state.Translation = p.state.Translation.Add(offset)
		return nil
	case "Rotate", "Scale", "Transform", "AreaLightSource", "ReverseOrientation":
		return fmt.Errorf("unsupported statement: %s", stmt.Type)
	}

	if !p.inWorld {
		// Film, Sampler and Integrator are accepted and ignored
		if stmt.Type == "Camera" {
			p.scene.Camera = stmt
		}
		return nil
	}

	switch stmt.Type {
	case "Material":
		p.scene.Materials = append(p.scene.Materials, *stmt)
		p.state.MaterialIndex = len(p.scene.Materials) - 1
	case "Shape":
		stmt.MaterialIndex = p.state.MaterialIndex
		stmt.Offset = p.state.Translation
		p.scene.Shapes = append(p.scene.Shapes, *stmt)
	case "LightSource":
		stmt.Offset = p.state.Translation
		p.scene.LightSources = append(p.scene.LightSources, *stmt)
	}
	return nil
}

// validateFilePath validates a file path for security issues
func validateFilePath(filename string) error {
	// Check for empty filename
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	// Clean the path to resolve . and .. components
	cleanPath := filepath.Clean(filename)

	// Only allow files in scenes/ directory or temp directory (for tests)
	if !strings.HasPrefix(cleanPath, "scenes"+string(filepath.Separator)) &&
		!strings.HasPrefix(cleanPath, os.TempDir()) &&
		!strings.Contains(cleanPath, string(filepath.Separator)+"scenes"+string(filepath.Separator)) {
		return fmt.Errorf("file path must be in scenes/ directory")
	}

	// Check file extension (only allow .pbrt files)
	if !strings.HasSuffix(strings.ToLower(cleanPath), ".pbrt") {
		return fmt.Errorf("invalid file type: only .pbrt files are allowed")
	}

	// Check for extremely long paths that could cause issues
	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	return nil
}

// parseLookAt parses a LookAt statement into scene camera vectors
func parseLookAt(stmt *PBRTStatement, scene *PBRTScene) error {
	// LookAt should have 9 values: eyex eyey eyez atx aty atz upx upy upz
	values := stmt.Parameters["values"].Values
	if len(values) != 9 {
		return fmt.Errorf("LookAt requires 9 values, got %d", len(values))
	}

	eye, err := parseVec3(values[0:3])
	if err != nil {
		return fmt.Errorf("invalid eye position: %w", err)
	}
	at, err := parseVec3(values[3:6])
	if err != nil {
		return fmt.Errorf("invalid look-at target: %w", err)
	}
	up, err := parseVec3(values[6:9])
	if err != nil {
		return fmt.Errorf("invalid up vector: %w", err)
	}

	scene.LookAt = &eye
	scene.LookAtTo = &at
	scene.LookAtUp = &up
	return nil
}

// parseVec3 parses exactly three float values
func parseVec3(values []string) (core.Vec3, error) {
	if len(values) != 3 {
		return core.Vec3{}, fmt.Errorf("expected 3 values, got %d", len(values))
	}
	var xyz [3]float64
	for i, value := range values {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid coordinate '%s': %w", value, err)
		}
		xyz[i] = f
	}
	return core.NewVec3(xyz[0], xyz[1], xyz[2]), nil
}

// tokenizePBRT tokenizes a PBRT line respecting quoted strings and brackets
func tokenizePBRT(line string) []string {
	var tokens []string
	var current strings.Builder
	inQuotes := false
	inBrackets := false

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, char := range line {
		switch {
		case char == '"' && !inBrackets:
			current.WriteRune(char)
			if inQuotes {
				// End of quoted string
				flush()
			}
			inQuotes = !inQuotes
		case char == '[' && !inQuotes:
			flush()
			current.WriteRune(char)
			inBrackets = true
		case char == ']' && !inQuotes && inBrackets:
			current.WriteRune(char)
			flush()
			inBrackets = false
		case (char == ' ' || char == '\t') && !inQuotes && !inBrackets:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()

	return tokens
}

// parseStatement parses a single PBRT statement line
func parseStatement(line string) (*PBRTStatement, error) {
	// Handle LookAt and transforms specially (bare numeric arguments)
	for _, bare := range []string{"LookAt", "Translate", "Rotate", "Scale", "Transform"} {
		if strings.HasPrefix(line, bare) {
			parts := strings.Fields(strings.Trim(line[len(bare):], " []"))
			return &PBRTStatement{
				Type: bare,
				Parameters: map[string]PBRTParam{
					"values": {Type: "float", Values: parts},
				},
				MaterialIndex: -1,
			}, nil
		}
	}

	// Parse regular statements: Type "subtype" "param type" value
	parts := tokenizePBRT(line)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid statement format")
	}

	stmt := &PBRTStatement{
		Type:          parts[0],
		Parameters:    make(map[string]PBRTParam),
		MaterialIndex: -1,
	}

	// Extract subtype (quoted string after type)
	if strings.HasPrefix(parts[1], "\"") && strings.HasSuffix(parts[1], "\"") {
		stmt.Subtype = strings.Trim(parts[1], "\"")
		parts = parts[2:]
	} else {
		parts = parts[1:]
	}

	// Parse parameters
	for i := 0; i < len(parts); i++ {
		if !strings.HasPrefix(parts[i], "\"") {
			continue
		}

		// Find parameter name and type
		paramParts := strings.Fields(strings.Trim(parts[i], "\""))
		if len(paramParts) != 2 {
			continue
		}
		paramType, paramName := paramParts[0], paramParts[1]

		// Parse parameter value(s)
		var values []string
		if i+1 < len(parts) {
			i++
			if strings.HasPrefix(parts[i], "[") && strings.HasSuffix(parts[i], "]") {
				values = strings.Fields(strings.Trim(parts[i], "[] "))
			} else {
				values = []string{strings.Trim(parts[i], "\"")}
			}
		}

		stmt.Parameters[paramName] = PBRTParam{
			Type:   paramType,
			Values: values,
		}
	}

	return stmt, nil
}

// GetFloatParam extracts a float parameter from a PBRT statement
func (stmt *PBRTStatement) GetFloatParam(name string) (float64, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false
	}
	val, err := strconv.ParseFloat(param.Values[0], 64)
	if err != nil {
		return 0, false
	}
	return val, true
}

// GetVec3Param extracts a three component parameter (rgb, point3, normal, vector3)
func (stmt *PBRTStatement) GetVec3Param(name string) (*core.Vec3, bool) {
	param, exists := stmt.Parameters[name]
	if !exists {
		return nil, false
	}
	v, err := parseVec3(param.Values)
	if err != nil {
		return nil, false
	}
	return &v, true
}

// GetStringParam extracts a string parameter from a PBRT statement
func (stmt *PBRTStatement) GetStringParam(name string) (string, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return "", false
	}
	return param.Values[0], true
}

// isStatementStart determines if a line starts a new PBRT statement
func isStatementStart(line string) bool {
	// A line starts a statement if it begins with a known PBRT directive
	statementTypes := []string{
		"Camera", "Film", "Sampler", "Integrator", "LookAt",
		"Material", "Shape", "LightSource", "AreaLightSource",
		"Translate", "Rotate", "Scale", "Transform",
		"ReverseOrientation", "Attribute",
	}

	for _, stmt := range statementTypes {
		if strings.HasPrefix(line, stmt+" ") || line == stmt {
			return true
		}
	}
	return false
}
