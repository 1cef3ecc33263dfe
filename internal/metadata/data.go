package metadata

// Built-in component data, keyed by providing package. The empty key is
// the LaTeX kernel.
var builtinCommands = map[string][]string{
	"": {
		"documentclass", "usepackage", "input", "include", "begin", "end",
		"section", "subsection", "subsubsection", "chapter", "part", "paragraph",
		"label", "ref", "pageref", "cite", "bibliography", "bibliographystyle",
		"textbf", "textit", "texttt", "emph", "underline",
		"item", "caption", "footnote", "maketitle", "title", "author", "date",
		"newcommand", "renewcommand", "newenvironment",
		"frac", "sqrt", "sum", "int", "alpha", "beta", "gamma", "delta",
	},
	"amsmath": {
		"eqref", "text", "boldsymbol", "dfrac", "tfrac", "binom",
		"operatorname", "DeclareMathOperator",
	},
	"graphicx": {
		"includegraphics", "graphicspath", "rotatebox", "scalebox", "resizebox",
	},
	"hyperref": {
		"href", "url", "autoref", "hyperref", "nameref",
	},
	"xcolor": {
		"color", "textcolor", "colorbox", "pagecolor", "definecolor",
	},
	"biblatex": {
		"addbibresource", "textcite", "parencite", "autocite", "printbibliography",
	},
	"cleveref": {
		"cref", "Cref", "crefrange", "Crefrange",
	},
	"listings": {
		"lstinputlisting", "lstset", "lstinline",
	},
}

var builtinEnvironments = map[string][]string{
	"": {
		"document", "itemize", "enumerate", "description", "figure", "table",
		"tabular", "center", "quote", "verbatim", "abstract", "titlepage",
		"equation", "array", "thebibliography",
	},
	"amsmath": {
		"align", "align*", "equation*", "gather", "gather*", "multline",
		"split", "cases", "matrix", "pmatrix", "bmatrix",
	},
	"listings": {
		"lstlisting",
	},
}

// builtinColors mirrors the color names LaTeX accepts out of the box plus
// the dvipsnames palette.
var builtinColors = []string{
	"black", "blue", "brown", "cyan", "darkgray", "gray", "green",
	"lightgray", "lime", "magenta", "olive", "orange", "pink", "purple",
	"red", "teal", "violet", "white", "yellow",
	"Apricot", "Aquamarine", "Bittersweet", "BlueGreen", "BlueViolet",
	"BrickRed", "BurntOrange", "CadetBlue", "CarnationPink", "Cerulean",
	"CornflowerBlue", "Dandelion", "DarkOrchid", "Emerald", "ForestGreen",
	"Fuchsia", "Goldenrod", "GreenYellow", "JungleGreen", "Lavender",
	"LimeGreen", "Mahogany", "Maroon", "Melon", "MidnightBlue", "Mulberry",
	"NavyBlue", "OliveGreen", "OrangeRed", "Orchid", "Peach", "Periwinkle",
	"PineGreen", "Plum", "ProcessBlue", "RawSienna", "RedOrange",
	"RedViolet", "Rhodamine", "RoyalBlue", "RoyalPurple", "RubineRed",
	"Salmon", "SeaGreen", "Sepia", "SkyBlue", "SpringGreen", "Tan",
	"TealBlue", "Thistle", "Turquoise", "VioletRed", "WildStrawberry",
	"YellowGreen", "YellowOrange",
}
