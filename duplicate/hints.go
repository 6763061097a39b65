package duplicate

// Help texts attached to grammar errors.
const (
	hintBracketArguments = `Hint: Each argument of a substitution identifier must be enclosed in '[]'.
Example:
    ident( [ argument1 ], [ argument2 ] )
           ^^^         ^  ^^^         ^`

	hintInvocationBrackets = "Expected invocation within brackets: [...]"

	expectedInvocation = "substitution_identifier (short syntax) or substitution group (verbose syntax)"

	hintShortNoGroups = `Hint: Add a substitution group after the substitution identifiers.
Example:
    name;
    [SomeSubstitution];
    ^^^^^^^^^^^^^^^^^^`

	hintShortMissingBracket = `Hint: Each substitution must be enclosed in '[]'.
Example:
    ident1 ident2;
    [ sub1 ] [ sub2 ];
    ^      ^ ^      ^`

	hintShortCount = `Hint: Every substitution group must have one substitution per substitution identifier.
Example:
    ident1 ident2;
    [sub1] [sub2];`

	hintVerboseIdentifiers = `Hint: All substitution groups must define the same substitution identifiers.
Example:
    [
        ident1 [sub1]
        ident2 [sub2]
    ]
    [
        ident1 [sub3]
        ident2 [sub4]
    ]`

	hintVerboseArguments = `Hint: A substitution identifier must take the same number of arguments in every substitution group.
Example:
    [
        ident1(arg1, arg2) [sub1 arg1 arg2]
    ]
    [
        ident1(arg1, arg2) [arg1 arg2 sub2]
    ]`

	hintVerboseSemicolon = `Hint: Verbose syntax does not use ';' between substitutions.
Example:
    [
        name [sub1]
        ty   [u32]
    ]`

	hintVerboseGroup = `Hint: In verbose syntax, substitutions must be enclosed in a group.
Example:
    [
        identifier1 [ substitution1 ]
        identifier2 [ substitution2 ]
    ]`

	hintGlobalSemicolon = `Hint: Each global substitution must end with ';'.
Example:
    name [sub1];
    typ  [sub2];`

	hintModuleDisambiguation = "Hint: If every substitution of a substitution identifier is a single " +
		"identifier, it is appended to the module's name automatically to make it unique."

	hintModuleManual = "Hint: Add a substitution identifier for the module's name, or enable " +
		"module disambiguation to generate unique names."
)
