package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/df07/go-ppm-raytracer/pkg/core"
)

var (
	ErrUnsupportedShape     = errors.New("unsupported shape")
	ErrUnsupportedTransform = errors.New("unsupported transform")
	ErrUnbalancedBlock      = errors.New("unbalanced AttributeBegin/AttributeEnd")
)

// PBRTStatement represents a parsed PBRT statement
type PBRTStatement struct {
	Type       string               // Statement type (Film, Shape, Translate, etc.)
	Subtype    string               // Subtype (image, sphere, etc.)
	Parameters map[string]PBRTParam // Named parameters
}

// PBRTParam represents a parameter with type and value(s)
type PBRTParam struct {
	Type   string   // Parameter type (float, integer, string)
	Values []string // Parameter values as strings
}

// PBRTSphere is a sphere resolved to world space
type PBRTSphere struct {
	Center core.Vec3
	Radius float64
}

// PBRTScene contains the parsed sphere-scene subset of a PBRT file
type PBRTScene struct {
	// Pre-WorldBegin statements
	Film    *PBRTStatement
	Sampler *PBRTStatement

	// World content
	Spheres []PBRTSphere

	// Statement types that were recognized but have no meaning for a sphere scene
	Ignored []string
}

// GraphicsState is the part of the PBRT graphics state that affects spheres
type GraphicsState struct {
	Translation core.Vec3 // Accumulated Translate offsets
}

// PBRTParser encapsulates the state and logic for parsing PBRT files
type PBRTParser struct {
	scene          *PBRTScene
	state          GraphicsState
	stateStack     []GraphicsState
	inWorld        bool
	statementLines []string
	lineNumber     int
}

// NewPBRTParser creates a new PBRT parser instance
func NewPBRTParser() *PBRTParser {
	return &PBRTParser{scene: &PBRTScene{}}
}

// ParsePBRT parses PBRT content from an io.Reader
func ParsePBRT(reader io.Reader) (*PBRTScene, error) {
	parser := NewPBRTParser()

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		parser.lineNumber++
		if err := parser.processLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", parser.lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

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

	scene, err := ParsePBRT(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return scene, nil
}

// processLine processes a single line of PBRT input
func (p *PBRTParser) processLine(line string) error {
	line = strings.TrimSpace(stripComment(line))
	if line == "" {
		return nil
	}

	switch line {
	case "WorldBegin", "WorldEnd", "AttributeBegin", "AttributeEnd":
		if err := p.processAccumulatedStatement(); err != nil {
			return err
		}
		return p.processDirective(line)
	}

	// Check if this line starts a new statement or continues the previous one
	if isStatementStart(line) {
		if err := p.processAccumulatedStatement(); err != nil {
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

// processDirective handles the parameterless block directives
func (p *PBRTParser) processDirective(directive string) error {
	switch directive {
	case "WorldBegin":
		p.inWorld = true
		p.state = GraphicsState{}
	case "WorldEnd":
		p.inWorld = false
	case "AttributeBegin":
		p.stateStack = append(p.stateStack, p.state)
	case "AttributeEnd":
		if len(p.stateStack) == 0 {
			return fmt.Errorf("%w: AttributeEnd without AttributeBegin", ErrUnbalancedBlock)
		}
		p.state = p.stateStack[len(p.stateStack)-1]
		p.stateStack = p.stateStack[:len(p.stateStack)-1]
	}
	return nil
}

// processAccumulatedStatement parses and applies any accumulated statement lines
func (p *PBRTParser) processAccumulatedStatement() error {
	if len(p.statementLines) == 0 {
		return nil
	}
	fullStatement := strings.Join(p.statementLines, " ")
	p.statementLines = nil

	stmt, err := parseStatement(fullStatement)
	if err != nil {
		return fmt.Errorf("error parsing statement '%s': %w", fullStatement, err)
	}
	return p.routeStatement(stmt)
}

// finalize processes any remaining accumulated statement
func (p *PBRTParser) finalize() error {
	if err := p.processAccumulatedStatement(); err != nil {
		return fmt.Errorf("at end of file: %w", err)
	}
	if len(p.stateStack) > 0 {
		return fmt.Errorf("%w: %d AttributeBegin left open", ErrUnbalancedBlock, len(p.stateStack))
	}
	return nil
}

// routeStatement applies a parsed statement to the scene or the graphics state
func (p *PBRTParser) routeStatement(stmt *PBRTStatement) error {
	switch stmt.Type {
	case "Film":
		p.scene.Film = stmt
	case "Sampler":
		p.scene.Sampler = stmt
	case "Translate":
		offset, err := stmt.vectorValues()
		if err != nil {
			return fmt.Errorf("Translate: %w", err)
		}
		p.state.Translation = p.state.Translation.Add(offset)
	case "Rotate", "Scale", "Transform", "ConcatTransform":
		// Spheres support translation only; before WorldBegin transforms belong to the camera
		if p.inWorld {
			return fmt.Errorf("%w: %s", ErrUnsupportedTransform, stmt.Type)
		}
		p.scene.Ignored = append(p.scene.Ignored, stmt.Type)
	case "Shape":
		if stmt.Subtype != "sphere" {
			return fmt.Errorf("%w: %q", ErrUnsupportedShape, stmt.Subtype)
		}
		radius := 1.0 // PBRT default
		if r, ok := stmt.GetFloatParam("radius"); ok {
			radius = r
		}
		if radius <= 0 {
			return fmt.Errorf("invalid sphere radius %g: must be positive", radius)
		}
		p.scene.Spheres = append(p.scene.Spheres, PBRTSphere{
			Center: p.state.Translation,
			Radius: radius,
		})
	default:
		p.scene.Ignored = append(p.scene.Ignored, stmt.Type)
	}
	return nil
}

// vectorValues parses the three positional values of a transform statement
func (stmt *PBRTStatement) vectorValues() (core.Vec3, error) {
	values := stmt.Parameters["values"].Values
	if len(values) != 3 {
		return core.Vec3{}, fmt.Errorf("expected 3 values, got %d", len(values))
	}
	var v [3]float64
	for i, s := range values {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid value '%s': %w", s, err)
		}
		v[i] = f
	}
	return core.NewVec3(v[0], v[1], v[2]), nil
}

// stripComment removes a trailing # comment outside quoted strings
func stripComment(line string) string {
	inQuotes := false
	for i, char := range line {
		switch char {
		case '"':
			inQuotes = !inQuotes
		case '#':
			if !inQuotes {
				return line[:i]
			}
		}
	}
	return line
}

// validateFilePath validates a file path for security issues
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.ToSlash(filepath.Clean(filename))

	// Only allow files in a scenes/ directory or the temp directory (for tests)
	inScenes := strings.HasPrefix(cleanPath, "scenes/") || strings.Contains(cleanPath, "/scenes/")
	inTemp := strings.HasPrefix(cleanPath, filepath.ToSlash(os.TempDir()))
	if !inScenes && !inTemp {
		return fmt.Errorf("file path must be in scenes/ directory")
	}

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".pbrt") {
		return fmt.Errorf("invalid file type: only .pbrt files are allowed")
	}

	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	return nil
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

// parseStatement parses a single PBRT statement
func parseStatement(line string) (*PBRTStatement, error) {
	// Transforms take bare positional values
	for _, transform := range []string{"LookAt", "Translate", "Rotate", "Scale"} {
		if strings.HasPrefix(line, transform+" ") || line == transform {
			return &PBRTStatement{
				Type: transform,
				Parameters: map[string]PBRTParam{
					"values": {Type: "float", Values: strings.Fields(line[len(transform):])},
				},
			}, nil
		}
	}

	// Regular statements: Type "subtype" "param type" value
	parts := tokenizePBRT(line)
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid statement format")
	}

	stmt := &PBRTStatement{
		Type:       parts[0],
		Parameters: make(map[string]PBRTParam),
	}

	if strings.HasPrefix(parts[1], "\"") && strings.HasSuffix(parts[1], "\"") {
		stmt.Subtype = strings.Trim(parts[1], "\"")
		parts = parts[2:]
	} else {
		parts = parts[1:]
	}

	for i := 0; i < len(parts); i++ {
		if !strings.HasPrefix(parts[i], "\"") {
			continue
		}

		paramParts := strings.Fields(strings.Trim(parts[i], "\""))
		if len(paramParts) != 2 {
			return nil, fmt.Errorf("invalid parameter declaration %s", parts[i])
		}
		if i+1 >= len(parts) {
			return nil, fmt.Errorf("parameter %s has no value", parts[i])
		}

		// Arrays are tokenized as a single bracketed token
		i++
		var values []string
		if strings.HasPrefix(parts[i], "[") {
			values = strings.Fields(strings.Trim(parts[i], "[]"))
		} else {
			values = []string{parts[i]}
		}
		for j, v := range values {
			values[j] = strings.Trim(v, "\"")
		}

		stmt.Parameters[paramParts[1]] = PBRTParam{
			Type:   paramParts[0],
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

// GetIntParam extracts an integer parameter from a PBRT statement
func (stmt *PBRTStatement) GetIntParam(name string) (int, bool) {
	param, exists := stmt.Parameters[name]
	if !exists || len(param.Values) == 0 {
		return 0, false
	}
	val, err := strconv.Atoi(param.Values[0])
	if err != nil {
		return 0, false
	}
	return val, true
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
	statementTypes := []string{
		"Camera", "Film", "Sampler", "Integrator", "LookAt",
		"Material", "Shape", "LightSource", "AreaLightSource",
		"Translate", "Rotate", "Scale", "Transform", "ConcatTransform",
		"ReverseOrientation", "Attribute",
	}

	for _, stmt := range statementTypes {
		if strings.HasPrefix(line, stmt+" ") || line == stmt {
			return true
		}
	}
	return false
}
