package credentials

// Short, kid-friendly Spanish words used for memorable passwords.
// Every entry is lowercase ASCII so the resulting secret needs no
// accents or shift key.
var wordlist = []string{
	"sol", "luna", "rio", "mar", "flor", "gato", "perro", "nube",
	"pez", "oso", "lobo", "puma", "tigre", "leon", "rana", "pato",
	"vaca", "mono", "zorro", "buho", "cielo", "tierra", "fuego", "agua",
	"verde", "azul", "rojo", "lila", "coral", "perla", "piedra", "arena",
	"viento", "lluvia", "nieve", "trueno", "estrella", "cometa", "faro", "barco",
	"tren", "globo", "luz", "pluma", "hoja", "rama", "selva", "bosque",
}
